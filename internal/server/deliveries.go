package server

import (
	"net/http"

	deliverydomain "github.com/cityville/laundromat/internal/delivery/domain"
	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDelivery(c *gin.Context) {
	var req deliverydomain.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deliverysvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDeliveries(c *gin.Context) {
	var f deliverydomain.ListDeliveryFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	runs, page, err := s.deliverysvc.List(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": runs, "page_info": page})
}

func (s *Server) GetDeliveryByID(c *gin.Context) {
	resp, err := s.deliverysvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDelivery(c *gin.Context) {
	var req deliverydomain.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deliverysvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateDeliveryStatus(c *gin.Context) {
	var req deliverydomain.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.deliverysvc.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.notifyDeliveryUpdate(c, resp)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteDelivery(c *gin.Context) {
	if err := s.deliverysvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) DeliveryStats(c *gin.Context) {
	resp, err := s.deliverysvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// notifyDeliveryUpdate tells the order's customer about the new run status.
// Notification failures never fail the request.
func (s *Server) notifyDeliveryUpdate(c *gin.Context, run *deliverydomain.Delivery) {
	order, err := s.ordersvc.GetByID(c.Request.Context(), run.OrderID.String())
	if err != nil || order == nil {
		return
	}

	s.notify(c.Request.Context(), notificationdomain.CreateNotificationRequest{
		UserID:    order.CustomerID,
		Kind:      notificationdomain.KindDelivery,
		Title:     "Delivery update",
		Message:   "Run " + run.Code + " is now " + string(run.Status) + ".",
		Reference: run.Code,
	})
}

func isDeliveryValidationError(err error) bool {
	switch err {
	case deliverydomain.ErrInvalidKind,
		deliverydomain.ErrInvalidStatus,
		deliverydomain.ErrInvalidReference,
		deliverydomain.ErrAddressRequired:
		return true
	default:
		return false
	}
}
