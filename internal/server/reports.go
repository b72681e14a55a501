package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultAnalyticsMonths = 6

func (s *Server) FinancialSummary(c *gin.Context) {
	resp, err := s.reportingsvc.FinancialSummary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompletedOrders(c *gin.Context) {
	resp, err := s.reportingsvc.CompletedOrders(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MonthlyAnalytics(c *gin.Context) {
	months, err := parseOptionalInt(c.Query("months"))
	if err != nil {
		AbortWithError(c, newValidationError("months", "invalid_months", "invalid months"))
		return
	}

	window := defaultAnalyticsMonths
	if months != nil {
		window = *months
	}

	resp, err := s.reportingsvc.MonthlyAnalytics(c.Request.Context(), window)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
