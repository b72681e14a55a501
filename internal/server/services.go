package server

import (
	"net/http"
	"strings"

	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	"github.com/cityville/laundromat/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateService(c *gin.Context) {
	var req catalogdomain.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogsvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListServices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Category string `form:"category"`
		Active   string `form:"is_active"`
		Search   string `form:"search"`
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

	services, page, err := s.catalogsvc.List(c.Request.Context(), catalogdomain.ListServiceFilter{
		Pagination: query.Pagination,
		Category:   strings.TrimSpace(query.Category),
		Active:     active,
		Search:     strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": services, "page_info": page})
}

func (s *Server) GetServiceByID(c *gin.Context) {
	resp, err := s.catalogsvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateService(c *gin.Context) {
	var req catalogdomain.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogsvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteService(c *gin.Context) {
	if err := s.catalogsvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) ServiceStats(c *gin.Context) {
	resp, err := s.catalogsvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidPrice,
		catalogdomain.ErrServiceInactive:
		return true
	default:
		return false
	}
}
