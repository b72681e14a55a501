package server

import (
	"net/http"

	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	"github.com/gin-gonic/gin"
)

// The inbox is always scoped to the caller.
func (s *Server) ListNotifications(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var f notificationdomain.ListNotificationFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	f.UserID = user.ID.String()

	items, page, err := s.notifysvc.List(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page_info": page})
}

func (s *Server) UnreadNotificationCount(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	count, err := s.notifysvc.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"unread": count}})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	resp, err := s.notifysvc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	count, err := s.notifysvc.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"marked": count}})
}

func (s *Server) DeleteNotification(c *gin.Context) {
	if err := s.notifysvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func isNotificationValidationError(err error) bool {
	switch err {
	case notificationdomain.ErrInvalidKind,
		notificationdomain.ErrTitleRequired,
		notificationdomain.ErrUserRequired:
		return true
	default:
		return false
	}
}
