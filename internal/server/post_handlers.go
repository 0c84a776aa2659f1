package server

import (
	"encoding/json"
	"mime/multipart"

	"skillshare/internal/models"
	"skillshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. The request is multipart: a "post" JSON
// part carrying description and media type, plus up to three "media" file parts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Description string           `json:"description"`
		MediaType   models.MediaType `json:"mediaType"`
	}

	postPart := c.FormValue("post")
	if postPart == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Missing post data"))
	}
	if err := json.Unmarshal([]byte(postPart), &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid post data"))
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files = form.File["media"]
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:      currentUserID(c),
		Description: req.Description,
		MediaType:   req.MediaType,
		Files:       files,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.postService.ListPosts(c.Context(), page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.Context(), postID, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/posts/user/:id
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.postService.GetUserPosts(c.Context(), userID, page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetFeed handles GET /api/posts/feed (posts from followed users, newest first)
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, size := models.PageParams(c)

	result, err := s.postService.GetFeed(c.Context(), currentUserID(c), page, size)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetTrendingPosts handles GET /api/posts/trending
func (s *Server) GetTrendingPosts(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	posts, err := s.postService.GetTrending(c.Context(), viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:      currentUserID(c),
		PostID:      postID,
		Description: req.Description,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.LikePost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// UnlikePost handles POST /api/posts/:id/unlike
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.UnlikePost(c.Context(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}

// IsPostLiked handles GET /api/posts/:id/is-liked.
// Returns a bare boolean; always false for anonymous viewers.
func (s *Server) IsPostLiked(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	viewerID, ok := s.optionalUserID(c)
	if !ok {
		return c.JSON(false)
	}

	liked, err := s.postService.IsLiked(c.Context(), viewerID, postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(liked)
}
