// Package service contains the application's business logic.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"skillshare/internal/middleware"
	"skillshare/internal/models"
	"skillshare/internal/notifications"
	"skillshare/internal/repository"
)

// commentPreviewLength is the number of characters of a comment body carried
// in its notification message.
const commentPreviewLength = 50

// NotificationService creates and queries notifications and fans them out to
// connected clients through the notifier.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	notifier         *notifications.Notifier
	retentionDays    int
}

type CreateNotificationInput struct {
	RecipientID uint
	ActorID     uint
	Type        models.NotificationType
	Message     string
	ActionURL   string
	TargetID    uint
	TargetType  string
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	notifier *notifications.Notifier,
	retentionDays int,
) *NotificationService {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		notifier:         notifier,
		retentionDays:    retentionDays,
	}
}

// CreateNotification persists a notification and publishes it to the
// recipient's channel. Acting on your own content is a silent no-op.
func (s *NotificationService) CreateNotification(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	if in.RecipientID == in.ActorID {
		return nil, nil
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		Type:        in.Type,
		Message:     in.Message,
		ActionURL:   in.ActionURL,
		TargetID:    in.TargetID,
		TargetType:  in.TargetType,
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, err
	}

	// Real-time delivery is best-effort; the persisted row is authoritative.
	if s.notifier != nil {
		if payload, err := json.Marshal(n); err == nil {
			if err := s.notifier.PublishUser(ctx, n.RecipientID, string(payload)); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to publish notification",
					slog.Any("recipient_id", n.RecipientID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return n, nil
}

// NotifyLike notifies a post's author that someone liked their post.
func (s *NotificationService) NotifyLike(ctx context.Context, actorID, postID uint) error {
	actor, err := s.userRepo.GetByID(ctx, actorID, 0)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}

	_, err = s.CreateNotification(ctx, CreateNotificationInput{
		RecipientID: post.UserID,
		ActorID:     actorID,
		Type:        models.NotificationLike,
		Message:     actor.Username + " liked your post",
		ActionURL:   fmt.Sprintf("/posts/%d", postID),
		TargetID:    postID,
		TargetType:  "post",
	})
	return err
}

// NotifyComment notifies a post's author about a new comment, including the
// first 50 characters of the comment body.
func (s *NotificationService) NotifyComment(ctx context.Context, actorID, postID, commentID uint) error {
	actor, err := s.userRepo.GetByID(ctx, actorID, 0)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}

	// Truncate on runes so a multi-byte character is never split.
	preview := comment.Content
	if runes := []rune(preview); len(runes) > commentPreviewLength {
		preview = string(runes[:commentPreviewLength])
	}

	_, err = s.CreateNotification(ctx, CreateNotificationInput{
		RecipientID: post.UserID,
		ActorID:     actorID,
		Type:        models.NotificationComment,
		Message:     actor.Username + " commented on your post: " + preview,
		ActionURL:   fmt.Sprintf("/posts/%d#comment-%d", postID, commentID),
		TargetID:    commentID,
		TargetType:  "comment",
	})
	return err
}

// NotifyFollow notifies a user that someone started following them.
func (s *NotificationService) NotifyFollow(ctx context.Context, actorID, targetUserID uint) error {
	actor, err := s.userRepo.GetByID(ctx, actorID, 0)
	if err != nil {
		return err
	}

	_, err = s.CreateNotification(ctx, CreateNotificationInput{
		RecipientID: targetUserID,
		ActorID:     actorID,
		Type:        models.NotificationFollow,
		Message:     actor.Username + " started following you",
		ActionURL:   "/users/" + actor.Username,
		TargetID:    actorID,
		TargetType:  "user",
	})
	return err
}

func (s *NotificationService) GetNotification(ctx context.Context, userID, notificationID uint) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.RecipientID != userID {
		return nil, models.NewForbiddenError("You can only view your own notifications")
	}
	return n, nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uint, page, size int) (models.Page[*models.Notification], error) {
	var empty models.Page[*models.Notification]
	items, err := s.notificationRepo.ListByRecipient(ctx, userID, size, page*size)
	if err != nil {
		return empty, err
	}
	total, err := s.notificationRepo.CountByRecipient(ctx, userID)
	if err != nil {
		return empty, err
	}
	return models.NewPage(items, total, page, size), nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	if _, err := s.GetNotification(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.notificationRepo.MarkRead(ctx, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

func (s *NotificationService) HasUnread(ctx context.Context, userID uint) (bool, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notificationID uint) error {
	if _, err := s.GetNotification(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.notificationRepo.Delete(ctx, notificationID)
}

// DeleteAll removes every notification belonging to the user.
func (s *NotificationService) DeleteAll(ctx context.Context, userID uint) error {
	_, err := s.notificationRepo.DeleteByRecipientBefore(ctx, userID, time.Now())
	return err
}

// Cleanup removes the user's notifications older than the retention window.
func (s *NotificationService) Cleanup(ctx context.Context, userID uint) error {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	_, err := s.notificationRepo.DeleteByRecipientBefore(ctx, userID, cutoff)
	return err
}

// SweepExpired removes notifications older than the retention window for all
// users. Invoked by the daily scheduler.
func (s *NotificationService) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	return s.notificationRepo.DeleteAllBefore(ctx, cutoff)
}
