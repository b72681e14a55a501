package server

import (
	"net/http"

	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) AddOrderItem(c *gin.Context) {
	var req orderdomain.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ordersvc.AddLine(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetOrderItemByID(c *gin.Context) {
	resp, err := s.ordersvc.GetLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrderItem(c *gin.Context) {
	var req orderdomain.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ordersvc.UpdateLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrderItem(c *gin.Context) {
	if err := s.ordersvc.DeleteLine(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
