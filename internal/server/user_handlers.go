package server

import (
	"strings"

	"skillshare/internal/models"
	"skillshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.userService.ListUsers(c.Context(), page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userService.GetUser(c.Context(), userID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Bio            string `json:"bio"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid request body"))
	}

	user, err := s.userService.UpdateUser(c.Context(), service.UpdateUserInput{
		UserID:         currentUserID(c),
		Username:       req.Username,
		Email:          req.Email,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	if err := s.userService.DeleteUser(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UploadProfilePicture handles POST /api/users/me/profile-picture
func (s *Server) UploadProfilePicture(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Profile picture file is required"))
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Only image files are allowed"))
	}

	url, err := s.media.Save(fh)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	userID := currentUserID(c)
	user, err := s.userService.GetUser(c.Context(), userID, 0)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	old := user.ProfilePicture
	updated, err := s.userService.UpdateUser(c.Context(), service.UpdateUserInput{
		UserID:         userID,
		Username:       user.Username,
		Email:          user.Email,
		Bio:            user.Bio,
		ProfilePicture: url,
	})
	if err != nil {
		s.media.Remove(url)
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if old != "" && old != url {
		s.media.Remove(old)
	}
	return c.JSON(updated)
}

// GetUserByUsername handles GET /api/users/:username
func (s *Server) GetUserByUsername(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	user, err := s.userService.GetUserByUsername(c.Context(), c.Params("username"), viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followee, err := s.userService.Follow(c.Context(), currentUserID(c), followeeID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(followee)
}

// UnfollowUser handles POST /api/users/:id/unfollow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followee, err := s.userService.Unfollow(c.Context(), currentUserID(c), followeeID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(followee)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.userService.GetFollowers(c.Context(), userID, page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.userService.GetFollowing(c.Context(), userID, page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// IsFollowingUser handles GET /api/users/:id/is-following.
// Returns a bare boolean; always false for anonymous viewers.
func (s *Server) IsFollowingUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, ok := s.optionalUserID(c)
	if !ok {
		return c.JSON(false)
	}

	following, err := s.userService.IsFollowing(c.Context(), viewerID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(following)
}

// GetUserComments handles GET /api/users/:userId/comments
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.commentService.ListUserComments(c.Context(), userID, page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}
