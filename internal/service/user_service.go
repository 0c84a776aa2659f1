package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"skillshare/internal/middleware"
	"skillshare/internal/models"
	"skillshare/internal/oauth"
	"skillshare/internal/repository"
	"skillshare/internal/validation"
)

// UserService handles profiles, the follow graph and OAuth account linking.
type UserService struct {
	userRepo        repository.UserRepository
	notificationSvc *NotificationService
}

type UpdateUserInput struct {
	UserID         uint
	Username       string
	Email          string
	Bio            string
	ProfilePicture string
}

func NewUserService(userRepo repository.UserRepository, notificationSvc *NotificationService) *UserService {
	return &UserService{
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
	}
}

func (s *UserService) GetUser(ctx context.Context, userID, currentUserID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID, currentUserID)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string, currentUserID uint) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username, currentUserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, page, size int, currentUserID uint) (models.Page[models.User], error) {
	var empty models.Page[models.User]
	users, err := s.userRepo.List(ctx, size, page*size, currentUserID)
	if err != nil {
		return empty, err
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return empty, err
	}
	return models.NewPage(users, total, page, size), nil
}

// UpdateUser applies profile changes after validating them, rejecting
// username/email values already taken by another account.
func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID, 0)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}
	if err := validation.ValidateBio(in.Bio); err != nil {
		return nil, models.NewBadRequestError(err.Error())
	}

	if in.Username != user.Username {
		existing, err := s.userRepo.GetByUsername(ctx, in.Username, 0)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewBadRequestError("Username is already taken")
		}
	}
	if in.Email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewBadRequestError("Email is already in use")
		}
	}

	user.Username = in.Username
	user.Email = in.Email
	user.Bio = in.Bio
	user.ProfilePicture = in.ProfilePicture

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, user.ID, 0)
}

func (s *UserService) DeleteUser(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, userID)
}

// Follow creates the follow edge and fans out a FOLLOW notification.
// Duplicate follows are rejected, not silently ignored.
func (s *UserService) Follow(ctx context.Context, followerID, followeeID uint) (*models.User, error) {
	if followerID == followeeID {
		return nil, models.NewBadRequestError("Users cannot follow themselves")
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID, 0); err != nil {
		return nil, err
	}

	if err := s.userRepo.Follow(ctx, followerID, followeeID); err != nil {
		return nil, err
	}

	if s.notificationSvc != nil {
		if err := s.notificationSvc.NotifyFollow(ctx, followerID, followeeID); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to create follow notification",
				slog.Any("follower_id", followerID),
				slog.Any("followee_id", followeeID),
				slog.String("error", err.Error()),
			)
		}
	}

	return s.userRepo.GetByID(ctx, followeeID, followerID)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID uint) (*models.User, error) {
	if followerID == followeeID {
		return nil, models.NewBadRequestError("Users cannot follow themselves")
	}
	if _, err := s.userRepo.GetByID(ctx, followeeID, 0); err != nil {
		return nil, err
	}

	if err := s.userRepo.Unfollow(ctx, followerID, followeeID); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, followeeID, followerID)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.userRepo.IsFollowing(ctx, followerID, followeeID)
}

func (s *UserService) GetFollowers(ctx context.Context, userID uint, page, size int, currentUserID uint) (models.Page[models.User], error) {
	var empty models.Page[models.User]
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return empty, err
	}
	users, err := s.userRepo.GetFollowers(ctx, userID, size, page*size, currentUserID)
	if err != nil {
		return empty, err
	}
	total, err := s.userRepo.CountFollowers(ctx, userID)
	if err != nil {
		return empty, err
	}
	return models.NewPage(users, total, page, size), nil
}

func (s *UserService) GetFollowing(ctx context.Context, userID uint, page, size int, currentUserID uint) (models.Page[models.User], error) {
	var empty models.Page[models.User]
	if _, err := s.userRepo.GetByID(ctx, userID, 0); err != nil {
		return empty, err
	}
	users, err := s.userRepo.GetFollowing(ctx, userID, size, page*size, currentUserID)
	if err != nil {
		return empty, err
	}
	total, err := s.userRepo.CountFollowing(ctx, userID)
	if err != nil {
		return empty, err
	}
	return models.NewPage(users, total, page, size), nil
}

// ResolveOAuthUser links or creates a local account from a provider profile.
// An existing account whose stored provider differs from the incoming one is
// rejected so the flow cannot silently take over a password account.
func (s *UserService) ResolveOAuthUser(ctx context.Context, provider models.AuthProvider, info *oauth.UserInfo) (*models.User, error) {
	if info.Email == "" {
		return nil, models.NewBadRequestError("Email not found from OAuth2 provider")
	}

	user, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}

	if user != nil {
		if user.Provider != provider {
			return nil, models.NewBadRequestError(fmt.Sprintf(
				"Looks like you're signed up with %s account. Please use your %s account to login.",
				user.Provider, user.Provider,
			))
		}
		user.ProfilePicture = info.Picture
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	username, err := s.generateUniqueUsername(ctx, info.Name)
	if err != nil {
		return nil, err
	}

	user = &models.User{
		Username:       username,
		Email:          info.Email,
		Provider:       provider,
		ProviderID:     info.ID,
		ProfilePicture: info.Picture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// generateUniqueUsername derives a username from the provider display name:
// lower-cased, whitespace stripped, with a numeric suffix appended until free.
func (s *UserService) generateUniqueUsername(ctx context.Context, name string) (string, error) {
	base := strings.ToLower(strings.Join(strings.Fields(name), ""))
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; ; i++ {
		existing, err := s.userRepo.GetByUsername(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
