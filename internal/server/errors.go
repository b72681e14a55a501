package server

import (
	"errors"
	"net/http"
	"strings"

	authdomain "github.com/cityville/laundromat/internal/auth/domain"
	"github.com/cityville/laundromat/internal/auth/password"
	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	deliverydomain "github.com/cityville/laundromat/internal/delivery/domain"
	invoicedomain "github.com/cityville/laundromat/internal/invoice/domain"
	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	rfiddomain "github.com/cityville/laundromat/internal/rfid/domain"
	"github.com/cityville/laundromat/internal/sequence"
	settingsdomain "github.com/cityville/laundromat/internal/settings/domain"
	taskdomain "github.com/cityville/laundromat/internal/task/domain"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrTokenInvalid),
		errors.Is(err, authdomain.ErrTokenExpired),
		errors.Is(err, password.ErrMismatch):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authdomain.ErrAccountDisabled):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, lifecycle.ErrInvalidStage),
		errors.Is(err, password.ErrTooShort):
		return true
	case isOrderValidationError(err),
		isCatalogValidationError(err),
		isUserValidationError(err),
		isTaskValidationError(err),
		isTagValidationError(err),
		isDeliveryValidationError(err),
		isInvoiceValidationError(err),
		isSettingsValidationError(err),
		isNotificationValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, userdomain.ErrDuplicateAccount),
		errors.Is(err, catalogdomain.ErrDuplicateName),
		errors.Is(err, invoicedomain.ErrAlreadyInvoiced),
		errors.Is(err, invoicedomain.ErrAlreadyPaid),
		errors.Is(err, sequence.ErrDuplicateIdentifier):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrLineNotFound),
		errors.Is(err, catalogdomain.ErrServiceNotFound),
		errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, taskdomain.ErrTaskNotFound),
		errors.Is(err, rfiddomain.ErrTagNotFound),
		errors.Is(err, deliverydomain.ErrDeliveryNotFound),
		errors.Is(err, invoicedomain.ErrInvoiceNotFound),
		errors.Is(err, notificationdomain.ErrNotificationNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isSettingsValidationError(err error) bool {
	return errors.Is(err, settingsdomain.ErrInvalidTaxRate)
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
