package server

import (
	"encoding/json"
	"net/http"

	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	// Customers always order for themselves.
	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer {
		req.CustomerID = user.ID.String()
	}

	resp, err := s.ordersvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.notify(c.Request.Context(), notificationdomain.CreateNotificationRequest{
		UserID:    resp.CustomerID,
		Kind:      notificationdomain.KindOrderUpdate,
		Title:     "Order placed",
		Message:   "Your order " + resp.Code + " has been received.",
		Reference: resp.Code,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var f orderdomain.ListOrderFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer {
		f.CustomerID = user.ID.String()
	}

	orders, page, err := s.ordersvc.List(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders, "page_info": page})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.ordersvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer && resp.CustomerID != user.ID {
		AbortWithError(c, orderdomain.ErrOrderNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrder(c *gin.Context) {
	var req orderdomain.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ordersvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.ordersvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) UpdateOrderStage(c *gin.Context) {
	var req orderdomain.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ordersvc.UpdateStage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, _ := json.Marshal(gin.H{
		"stage":    resp.Order.CurrentStage,
		"status":   resp.Status,
		"progress": resp.Progress,
	})
	s.notify(c.Request.Context(), notificationdomain.CreateNotificationRequest{
		UserID:    resp.Order.CustomerID,
		Kind:      notificationdomain.KindOrderUpdate,
		Title:     "Order update",
		Message:   "Order " + resp.Order.Code + " moved to " + string(resp.Order.CurrentStage) + ".",
		Reference: resp.Order.Code,
		Data:      datatypes.JSON(data),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecalculateOrder(c *gin.Context) {
	resp, err := s.ordersvc.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) OrderTimeline(c *gin.Context) {
	resp, err := s.ordersvc.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) OrderStats(c *gin.Context) {
	resp, err := s.ordersvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isOrderValidationError(err error) bool {
	switch err {
	case orderdomain.ErrCustomerRequired,
		orderdomain.ErrInvalidQuantity,
		orderdomain.ErrInvalidUnitPrice:
		return true
	default:
		return false
	}
}
