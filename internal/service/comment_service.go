package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"skillshare/internal/middleware"
	"skillshare/internal/models"
	"skillshare/internal/repository"
)

// CommentService handles comments and their per-viewer permission flags.
type CommentService struct {
	commentRepo     repository.CommentRepository
	postRepo        repository.PostRepository
	notificationSvc *NotificationService
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	notificationSvc *NotificationService,
) *CommentService {
	return &CommentService{
		commentRepo:     commentRepo,
		postRepo:        postRepo,
		notificationSvc: notificationSvc,
	}
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewBadRequestError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxCommentLength {
		return models.NewBadRequestError("Comment cannot exceed 500 characters")
	}
	return nil
}

// setPermissionFlags computes canEdit/canDelete relative to the viewer.
// Anonymous viewers get both flags false.
func setPermissionFlags(comment *models.Comment, postAuthorID, viewerID uint) {
	if viewerID == 0 {
		return
	}
	isAuthor := comment.UserID == viewerID
	comment.CanEdit = isAuthor
	comment.CanDelete = isAuthor || postAuthorID == viewerID
}

// CreateComment persists the comment and notifies the post's author.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyComment(ctx, in.UserID, in.PostID, comment.ID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to create comment notification",
				slog.Any("post_id", in.PostID),
				slog.Any("comment_id", comment.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	setPermissionFlags(created, post.UserID, in.UserID)
	return created, nil
}

func (s *CommentService) GetComment(ctx context.Context, commentID, currentUserID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID, 0)
	if err != nil {
		return nil, err
	}
	setPermissionFlags(comment, post.UserID, currentUserID)
	return comment, nil
}

func (s *CommentService) ListPostComments(ctx context.Context, postID uint, page, size int, currentUserID uint) (models.Page[*models.Comment], error) {
	var empty models.Page[*models.Comment]
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return empty, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID, size, page*size)
	if err != nil {
		return empty, err
	}
	total, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return empty, err
	}

	for _, c := range comments {
		setPermissionFlags(c, post.UserID, currentUserID)
	}
	return models.NewPage(comments, total, page, size), nil
}

// ListUserComments pages over one user's comments across all posts.
func (s *CommentService) ListUserComments(ctx context.Context, userID uint, page, size int, currentUserID uint) (models.Page[*models.Comment], error) {
	var empty models.Page[*models.Comment]
	comments, err := s.commentRepo.ListByUser(ctx, userID, size, page*size)
	if err != nil {
		return empty, err
	}
	total, err := s.commentRepo.CountByUser(ctx, userID)
	if err != nil {
		return empty, err
	}

	for _, c := range comments {
		post, err := s.postRepo.GetByID(ctx, c.PostID, 0)
		if err != nil {
			continue
		}
		setPermissionFlags(c, post.UserID, currentUserID)
	}
	return models.NewPage(comments, total, page, size), nil
}

// UpdateComment is permitted for the comment author or the post author.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID, 0)
	if err != nil {
		return nil, err
	}

	if comment.UserID != in.UserID && post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You don't have permission to modify this comment")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	comment.Edited = true
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	setPermissionFlags(updated, post.UserID, in.UserID)
	return updated, nil
}

// DeleteComment is permitted for the comment author or the post author.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	post, err := s.postRepo.GetByID(ctx, comment.PostID, 0)
	if err != nil {
		return err
	}

	if comment.UserID != userID && post.UserID != userID {
		return models.NewForbiddenError("You don't have permission to delete this comment")
	}

	return s.commentRepo.Delete(ctx, commentID)
}
