package server

import (
	"net/http"
	"strings"

	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateUser(c *gin.Context) {
	var req userdomain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.usersvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListUsers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Role   string `form:"role"`
		Active string `form:"is_active"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	active, err := parseOptionalBool(query.Active)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}

	users, page, err := s.usersvc.List(c.Request.Context(), userdomain.ListUserFilter{
		Pagination: query.Pagination,
		Role:       strings.TrimSpace(query.Role),
		Active:     active,
		Search:     strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users, "page_info": page})
}

func (s *Server) GetUserByID(c *gin.Context) {
	resp, err := s.usersvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// UpdateUser edits profile fields. Customers may edit their own record;
// staff and admins may edit anyone's.
func (s *Server) UpdateUser(c *gin.Context) {
	if !s.canAccessAccount(c, c.Param("id")) {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req userdomain.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.usersvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.usersvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) UserStats(c *gin.Context) {
	resp, err := s.usersvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Preference routes allow customers to manage their own record; staff can
// reach any customer's.
func (s *Server) GetPreferences(c *gin.Context) {
	if !s.canAccessAccount(c, c.Param("id")) {
		AbortWithError(c, ErrForbidden)
		return
	}

	resp, err := s.usersvc.GetPreferences(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePreferences(c *gin.Context) {
	if !s.canAccessAccount(c, c.Param("id")) {
		AbortWithError(c, ErrForbidden)
		return
	}

	var req userdomain.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.usersvc.UpdatePreferences(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) canAccessAccount(c *gin.Context, id string) bool {
	user := currentUser(c)
	if user == nil {
		return false
	}
	if user.Role == userdomain.RoleAdmin || user.Role == userdomain.RoleStaff {
		return true
	}
	return user.ID.String() == strings.TrimSpace(id)
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidUsername,
		userdomain.ErrInvalidEmail,
		userdomain.ErrInvalidRole,
		userdomain.ErrNotCustomer:
		return true
	default:
		return false
	}
}
