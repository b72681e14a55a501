package server

import (
	"net/http"

	invoicedomain "github.com/cityville/laundromat/internal/invoice/domain"
	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GenerateInvoice(c *gin.Context) {
	var req invoicedomain.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoicesvc.Generate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.notify(c.Request.Context(), notificationdomain.CreateNotificationRequest{
		UserID:    resp.CustomerID,
		Kind:      notificationdomain.KindPayment,
		Title:     "Invoice issued",
		Message:   "Invoice " + resp.Code + " is ready.",
		Reference: resp.Code,
	})

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	var f invoicedomain.ListInvoiceFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer {
		f.CustomerID = user.ID.String()
	}

	invoices, page, err := s.invoicesvc.List(c.Request.Context(), f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": invoices, "page_info": page})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoicesvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer && resp.CustomerID != user.ID {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByOrder(c *gin.Context) {
	resp, err := s.invoicesvc.GetByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer && resp.CustomerID != user.ID {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InvoicePDF(c *gin.Context) {
	invoice, err := s.invoicesvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if user := currentUser(c); user != nil && user.Role == userdomain.RoleCustomer && invoice.CustomerID != user.ID {
		AbortWithError(c, invoicedomain.ErrInvoiceNotFound)
		return
	}

	pdf, err := s.invoicesvc.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.Code+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	var req invoicedomain.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoicesvc.MarkPaid(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.notify(c.Request.Context(), notificationdomain.CreateNotificationRequest{
		UserID:    resp.CustomerID,
		Kind:      notificationdomain.KindPayment,
		Title:     "Payment received",
		Message:   "Invoice " + resp.Code + " has been paid.",
		Reference: resp.Code,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	resp, err := s.invoicesvc.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) InvoiceStats(c *gin.Context) {
	resp, err := s.invoicesvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isInvoiceValidationError(err error) bool {
	return err == invoicedomain.ErrInvalidStatus
}
