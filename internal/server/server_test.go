package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/cityville/laundromat/internal/auth/password"
	authrepo "github.com/cityville/laundromat/internal/auth/repository"
	authservice "github.com/cityville/laundromat/internal/auth/service"
	catalogrepo "github.com/cityville/laundromat/internal/catalog/repository"
	catalogservice "github.com/cityville/laundromat/internal/catalog/service"
	"github.com/cityville/laundromat/internal/config"
	deliveryrepo "github.com/cityville/laundromat/internal/delivery/repository"
	deliveryservice "github.com/cityville/laundromat/internal/delivery/service"
	invoicerepo "github.com/cityville/laundromat/internal/invoice/repository"
	invoiceservice "github.com/cityville/laundromat/internal/invoice/service"
	"github.com/cityville/laundromat/internal/migration"
	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	notificationrepo "github.com/cityville/laundromat/internal/notification/repository"
	notificationservice "github.com/cityville/laundromat/internal/notification/service"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/order/lifecycle"
	orderrepo "github.com/cityville/laundromat/internal/order/repository"
	orderservice "github.com/cityville/laundromat/internal/order/service"
	"github.com/cityville/laundromat/internal/providers/pdf"
	reportingrepo "github.com/cityville/laundromat/internal/reporting/repository"
	reportingservice "github.com/cityville/laundromat/internal/reporting/service"
	rfidrepo "github.com/cityville/laundromat/internal/rfid/repository"
	rfidservice "github.com/cityville/laundromat/internal/rfid/service"
	"github.com/cityville/laundromat/internal/sequence"
	settingsrepo "github.com/cityville/laundromat/internal/settings/repository"
	settingsservice "github.com/cityville/laundromat/internal/settings/service"
	taskrepo "github.com/cityville/laundromat/internal/task/repository"
	taskservice "github.com/cityville/laundromat/internal/task/service"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	userrepo "github.com/cityville/laundromat/internal/user/repository"
	userservice "github.com/cityville/laundromat/internal/user/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type serverEnv struct {
	engine *gin.Engine
	users  userdomain.Service
}

func newServerEnv(t *testing.T) *serverEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	codes := sequence.NewAllocator(conn)
	hasher := password.NewHasher()
	cfg := config.Config{
		AppName:           "laundromat",
		Currency:          "UGX",
		InvoiceDueDays:    14,
		AuthTokenTTLHours: 72,
	}

	users := userservice.New(userservice.Params{DB: conn, Log: log, GenID: node, Repo: userrepo.Provide(), Hasher: hasher})
	authsvc := authservice.New(authservice.Params{Config: cfg, DB: conn, Log: log, GenID: node, Repo: authrepo.Provide(), Users: users, Hasher: hasher})
	catalog := catalogservice.New(catalogservice.Params{DB: conn, Log: log, GenID: node, Repo: catalogrepo.Provide()})
	orders := orderservice.New(orderservice.Params{DB: conn, Log: log, GenID: node, Codes: codes, Repo: orderrepo.Provide(), Pricer: catalog})
	tasks := taskservice.New(taskservice.Params{DB: conn, Log: log, GenID: node, Codes: codes, Repo: taskrepo.Provide()})
	tags := rfidservice.New(rfidservice.Params{DB: conn, Log: log, GenID: node, Codes: codes, Repo: rfidrepo.Provide()})
	deliveries := deliveryservice.New(deliveryservice.Params{DB: conn, Log: log, GenID: node, Codes: codes, Repo: deliveryrepo.Provide()})
	settingssvc := settingsservice.New(settingsservice.Params{Config: cfg, DB: conn, Log: log, GenID: node, Repo: settingsrepo.Provide()})
	invoices := invoiceservice.New(invoiceservice.Params{
		Config: cfg, DB: conn, Log: log, GenID: node, Codes: codes,
		Repo: invoicerepo.Provide(), Orders: orders, Users: users,
		Catalog: catalog, Settings: settingssvc, Renderer: pdf.New(),
	})
	notify := notificationservice.New(notificationservice.Params{DB: conn, Log: log, GenID: node, Repo: notificationrepo.Provide()})
	reports := reportingservice.New(reportingservice.Params{DB: conn, Log: log, GenID: node, Repo: reportingrepo.Provide()})

	// Metrics are nil so repeated engines do not fight over the default
	// prometheus registry.
	engine := NewEngine(log, nil)
	srv := NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Log:          log,
		Authsvc:      authsvc,
		Usersvc:      users,
		Catalogsvc:   catalog,
		Ordersvc:     orders,
		Tasksvc:      tasks,
		Rfidsvc:      tags,
		Deliverysvc:  deliveries,
		Invoicesvc:   invoices,
		Settingssvc:  settingssvc,
		Notifysvc:    notify,
		Reportingsvc: reports,
	})
	RegisterRoutes(srv)

	return &serverEnv{engine: engine, users: users}
}

func (e *serverEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

type sessionResponse struct {
	Data struct {
		Token string          `json:"token"`
		User  userdomain.User `json:"user"`
	} `json:"data"`
}

func (e *serverEnv) registerCustomer(t *testing.T, username string) sessionResponse {
	t.Helper()

	w := e.request(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "hunter2secret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp
}

func (e *serverEnv) loginAdmin(t *testing.T) string {
	t.Helper()

	_, err := e.users.Create(context.Background(), userdomain.CreateUserRequest{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "hunter2secret",
		Role:     string(userdomain.RoleAdmin),
	})
	require.NoError(t, err)

	w := e.request(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "boss",
		"password": "hunter2secret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp sessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestHealthEndpoint(t *testing.T) {
	env := newServerEnv(t)

	w := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	env := newServerEnv(t)

	w := env.request(t, http.MethodGet, "/api/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unauthorized", resp.Error.Type)
}

func TestRegisterThenMe(t *testing.T) {
	env := newServerEnv(t)
	session := env.registerCustomer(t, "walkin")

	assert.Equal(t, userdomain.RoleCustomer, session.Data.User.Role)

	w := env.request(t, http.MethodGet, "/auth/me", session.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Data userdomain.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "walkin", me.Data.Username)

	w = env.request(t, http.MethodPost, "/auth/login", "", gin.H{
		"username": "walkin",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerCannotReachStaffRoutes(t *testing.T) {
	env := newServerEnv(t)
	session := env.registerCustomer(t, "walkin")
	admin := env.loginAdmin(t)

	w := env.request(t, http.MethodGet, "/api/tasks", session.Data.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "forbidden", resp.Error.Type)

	w = env.request(t, http.MethodGet, "/api/tasks", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBindErrorsUseValidationEnvelope(t *testing.T) {
	env := newServerEnv(t)
	admin := env.loginAdmin(t)

	w := env.request(t, http.MethodPost, "/api/services", admin, gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	require.NotEmpty(t, resp.Error.Errors)
	assert.Equal(t, "invalid_request", resp.Error.Errors[0].Code)
}

func TestOrderToInvoiceFlow(t *testing.T) {
	env := newServerEnv(t)
	admin := env.loginAdmin(t)
	customer := env.registerCustomer(t, "walkin")
	stranger := env.registerCustomer(t, "stranger")

	w := env.request(t, http.MethodPost, "/api/services", admin, gin.H{
		"name":     "Wash & Fold",
		"category": "washing",
		"price":    5.00,
		"unit":     "kg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var svcResp struct {
		Data struct {
			ID snowflake.ID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &svcResp))

	// A customer books their own order; the handler pins customer_id to
	// the caller regardless of what the body says.
	w = env.request(t, http.MethodPost, "/api/orders", customer.Data.Token, gin.H{
		"customer_id": "ignored",
		"order_items": []gin.H{
			{"service_id": svcResp.Data.ID.String(), "quantity": 3},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var orderResp struct {
		Data orderdomain.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orderResp))
	order := orderResp.Data
	assert.Regexp(t, `^ORD-\d{4}-\d{3}$`, order.Code)
	assert.Equal(t, customer.Data.User.ID, order.CustomerID)
	assert.Equal(t, lifecycle.StatusPending, order.Status)
	assert.True(t, order.Amount.Equal(decimal.NewFromInt(15)))

	// Another customer cannot see it.
	w = env.request(t, http.MethodGet, "/api/orders/"+order.Code, stranger.Data.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Staff moves the order through the floor.
	w = env.request(t, http.MethodPost, "/api/orders/"+order.Code+"/stage", admin, gin.H{"stage": "washing"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orderResp))
	assert.Equal(t, lifecycle.StatusProcessing, orderResp.Data.Status)
	assert.Equal(t, 45, orderResp.Data.Progress)

	// Billing.
	w = env.request(t, http.MethodPost, "/api/invoices/generate", admin, gin.H{"order_id": order.Code})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var invoiceResp struct {
		Data struct {
			Code string `json:"invoice_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &invoiceResp))
	assert.Regexp(t, `^INV-\d{4}-\d{3}$`, invoiceResp.Data.Code)

	// The owning customer can pull the PDF.
	w = env.request(t, http.MethodGet, "/api/invoices/"+invoiceResp.Data.Code+"/pdf", customer.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// The unread order notification landed in the customer's inbox.
	w = env.request(t, http.MethodGet, "/api/notifications/unread-count", customer.Data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var countResp struct {
		Data struct {
			Unread int64 `json:"unread"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &countResp))
	assert.GreaterOrEqual(t, countResp.Data.Unread, int64(1))
}

func TestNotifyFailureIsLoggedAndSwallowed(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migration.Run(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	core, observed := observer.New(zapcore.WarnLevel)
	notifysvc := notificationservice.New(notificationservice.Params{DB: conn, Log: zap.NewNop(), GenID: node, Repo: notificationrepo.Provide()})
	srv := &Server{log: zap.New(core), notifysvc: notifysvc}

	// No recipient makes the write fail; the helper logs instead of
	// propagating the error.
	srv.notify(context.Background(), notificationdomain.CreateNotificationRequest{
		Kind:      notificationdomain.KindOrderUpdate,
		Title:     "Order placed",
		Reference: "ORD-2026-001",
	})

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "notification write failed", entries[0].Message)
	assert.Equal(t, "ORD-2026-001", entries[0].ContextMap()["reference"])
}
