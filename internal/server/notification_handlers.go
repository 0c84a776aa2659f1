package server

import (
	"skillshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page, size := models.PageParams(c)

	result, err := s.notificationService.ListNotifications(c.Context(), currentUserID(c), page, size)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(result)
}

// GetNotification handles GET /api/notifications/:id
func (s *Server) GetNotification(c *fiber.Ctx) error {
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.notificationService.GetNotification(c.Context(), currentUserID(c), notificationID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(n)
}

// MarkNotificationRead handles POST /api/notifications/:id/mark-read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(c.Context(), currentUserID(c), notificationID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/mark-all-read
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notificationService.MarkAllRead(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUnreadNotificationCount handles GET /api/notifications/unread-count.
// Returns a bare number.
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	count, err := s.notificationService.UnreadCount(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(count)
}

// HasUnreadNotifications handles GET /api/notifications/has-unread.
// Returns a bare boolean.
func (s *Server) HasUnreadNotifications(c *fiber.Ctx) error {
	has, err := s.notificationService.HasUnread(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(has)
}

// DeleteNotification handles DELETE /api/notifications/:id
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.DeleteNotification(c.Context(), currentUserID(c), notificationID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAllNotifications handles DELETE /api/notifications
func (s *Server) DeleteAllNotifications(c *fiber.Ctx) error {
	if err := s.notificationService.DeleteAll(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CleanupNotifications handles POST /api/notifications/cleanup, removing the
// caller's notifications older than the retention window.
func (s *Server) CleanupNotifications(c *fiber.Ctx) error {
	if err := s.notificationService.Cleanup(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
