package server

import (
	"strings"
	"unicode/utf8"

	"skillshare/internal/models"
	"skillshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// commentFieldErrors validates comment content the way form validation does,
// rendering violations as a bare {field: message} map.
func commentFieldErrors(content string) models.FieldErrors {
	fields := models.FieldErrors{}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "Comment content is required"
	} else if utf8.RuneCountInString(content) > models.MaxCommentLength {
		fields["content"] = "Comment cannot exceed 500 characters"
	}
	return fields
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid request body"))
	}
	if fields := commentFieldErrors(req.Content); len(fields) > 0 {
		return models.RespondWithFieldErrors(c, fields)
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetPostComments handles GET /api/posts/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, size := models.PageParams(c)
	viewerID, _ := s.optionalUserID(c)

	result, err := s.commentService.ListPostComments(c.Context(), postID, page, size, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetComment handles GET /api/comments/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	comment, err := s.commentService.GetComment(c.Context(), commentID, viewerID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid request body"))
	}
	if fields := commentFieldErrors(req.Content); len(fields) > 0 {
		return models.RespondWithFieldErrors(c, fields)
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), currentUserID(c), commentID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
