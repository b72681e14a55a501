package server

import (
	"net/http"

	rfiddomain "github.com/cityville/laundromat/internal/rfid/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateTag(c *gin.Context) {
	var req rfiddomain.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rfidsvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListTags(c *gin.Context) {
	var f rfiddomain.ListTagFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tags, page, err := s.rfidsvc.List(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tags, "page_info": page})
}

func (s *Server) GetTagByID(c *gin.Context) {
	resp, err := s.rfidsvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTag(c *gin.Context) {
	var req rfiddomain.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rfidsvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyTag(c *gin.Context) {
	var req rfiddomain.VerifyTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rfidsvc.Verify(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTag(c *gin.Context) {
	if err := s.rfidsvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) TagStats(c *gin.Context) {
	resp, err := s.rfidsvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isTagValidationError(err error) bool {
	switch err {
	case rfiddomain.ErrInvalidStatus,
		rfiddomain.ErrInvalidReference:
		return true
	default:
		return false
	}
}
