package service

import (
	"context"
	"log/slog"
	"mime/multipart"

	"skillshare/internal/middleware"
	"skillshare/internal/models"
	"skillshare/internal/repository"
	"skillshare/internal/storage"
)

// PostService handles post lifecycle, likes, feed and trending queries.
type PostService struct {
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	commentRepo     repository.CommentRepository
	media           *storage.MediaStore
	notificationSvc *NotificationService
}

type CreatePostInput struct {
	UserID      uint
	Description string
	MediaType   models.MediaType
	Files       []*multipart.FileHeader
}

type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	Description string
}

// TrendingLimit is the number of posts returned by the trending query.
const TrendingLimit = 10

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	media *storage.MediaStore,
	notificationSvc *NotificationService,
) *PostService {
	return &PostService{
		postRepo:        postRepo,
		userRepo:        userRepo,
		commentRepo:     commentRepo,
		media:           media,
		notificationSvc: notificationSvc,
	}
}

// CreatePost validates and stores the media files, then persists the post.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Description == "" {
		return nil, models.NewBadRequestError("Description is required")
	}
	if len(in.Files) > models.MaxMediaFiles {
		return nil, models.NewBadRequestError("Maximum 3 media files allowed per post")
	}
	if in.MediaType != "" && in.MediaType != models.MediaTypePhoto && in.MediaType != models.MediaTypeVideo {
		return nil, models.NewBadRequestError("Invalid media type")
	}

	// Validate everything before writing any file to disk.
	for _, fh := range in.Files {
		if err := s.media.Validate(fh); err != nil {
			return nil, err
		}
	}

	var mediaURLs []string
	for _, fh := range in.Files {
		url, err := s.media.Save(fh)
		if err != nil {
			// Roll back files already written for this post.
			for _, saved := range mediaURLs {
				s.media.Remove(saved)
			}
			return nil, err
		}
		mediaURLs = append(mediaURLs, url)
	}

	post := &models.Post{
		UserID:      in.UserID,
		Description: in.Description,
		MediaURLs:   mediaURLs,
		MediaType:   in.MediaType,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, postID, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, currentUserID)
}

func (s *PostService) ListPosts(ctx context.Context, page, size int, currentUserID uint) (models.Page[*models.Post], error) {
	var empty models.Page[*models.Post]
	posts, err := s.postRepo.List(ctx, size, page*size, currentUserID)
	if err != nil {
		return empty, err
	}
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return empty, err
	}
	return models.NewPage(posts, total, page, size), nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID uint, page, size int, currentUserID uint) (models.Page[*models.Post], error) {
	var empty models.Page[*models.Post]
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return empty, err
	}
	posts, err := s.postRepo.GetByUserID(ctx, userID, size, page*size, currentUserID)
	if err != nil {
		return empty, err
	}
	total, err := s.postRepo.CountByUserID(ctx, userID)
	if err != nil {
		return empty, err
	}
	return models.NewPage(posts, total, page, size), nil
}

// GetFeed returns posts from users the current user follows, newest first.
func (s *PostService) GetFeed(ctx context.Context, userID uint, page, size int) (models.Page[*models.Post], error) {
	var empty models.Page[*models.Post]
	posts, err := s.postRepo.Feed(ctx, userID, size, page*size)
	if err != nil {
		return empty, err
	}
	total, err := s.postRepo.CountFeed(ctx, userID)
	if err != nil {
		return empty, err
	}
	return models.NewPage(posts, total, page, size), nil
}

// GetTrending returns the top posts globally by like count.
func (s *PostService) GetTrending(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.Trending(ctx, TrendingLimit, currentUserID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, 0)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You don't have permission to modify this post")
	}
	if in.Description == "" {
		return nil, models.NewBadRequestError("Description is required")
	}

	post.Description = in.Description
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// DeletePost removes the post and its comments, which are owned by the post.
// Referenced media files are deleted best-effort; a failed file removal never
// blocks the deletion.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, 0)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You don't have permission to modify this post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	if _, err := s.commentRepo.DeleteByPost(ctx, postID); err != nil {
		return err
	}

	for _, url := range post.MediaURLs {
		s.media.Remove(url)
	}
	return nil
}

// LikePost records the like and notifies the post's author. Liking an
// already-liked post is rejected.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		return nil, models.NewBadRequestError("Post is already liked by the user")
	}

	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}

	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyLike(ctx, userID, postID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to create like notification",
				slog.Any("post_id", postID),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// UnlikePost removes the like. Unliking a post that is not liked is rejected.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	liked, err := s.postRepo.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !liked {
		return nil, models.NewBadRequestError("Post is not liked by the user")
	}

	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

func (s *PostService) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return false, err
	}
	return s.postRepo.IsLiked(ctx, userID, postID)
}
