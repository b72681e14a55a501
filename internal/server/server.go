package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cityville/laundromat/internal/auth"
	authdomain "github.com/cityville/laundromat/internal/auth/domain"
	"github.com/cityville/laundromat/internal/catalog"
	catalogdomain "github.com/cityville/laundromat/internal/catalog/domain"
	"github.com/cityville/laundromat/internal/config"
	"github.com/cityville/laundromat/internal/delivery"
	deliverydomain "github.com/cityville/laundromat/internal/delivery/domain"
	"github.com/cityville/laundromat/internal/invoice"
	invoicedomain "github.com/cityville/laundromat/internal/invoice/domain"
	"github.com/cityville/laundromat/internal/notification"
	notificationdomain "github.com/cityville/laundromat/internal/notification/domain"
	"github.com/cityville/laundromat/internal/observability/logger"
	"github.com/cityville/laundromat/internal/observability/metrics"
	"github.com/cityville/laundromat/internal/order"
	orderdomain "github.com/cityville/laundromat/internal/order/domain"
	"github.com/cityville/laundromat/internal/providers"
	"github.com/cityville/laundromat/internal/reporting"
	reportingdomain "github.com/cityville/laundromat/internal/reporting/domain"
	"github.com/cityville/laundromat/internal/rfid"
	rfiddomain "github.com/cityville/laundromat/internal/rfid/domain"
	"github.com/cityville/laundromat/internal/sequence"
	"github.com/cityville/laundromat/internal/settings"
	settingsdomain "github.com/cityville/laundromat/internal/settings/domain"
	"github.com/cityville/laundromat/internal/task"
	taskdomain "github.com/cityville/laundromat/internal/task/domain"
	"github.com/cityville/laundromat/internal/user"
	userdomain "github.com/cityville/laundromat/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	sequence.Module,
	providers.Module,
	auth.Module,
	user.Module,
	catalog.Module,
	order.Module,
	task.Module,
	rfid.Module,
	delivery.Module,
	invoice.Module,
	settings.Module,
	notification.Module,
	reporting.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(RunHTTP),
)

func NewEngine(log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	authsvc      authdomain.Service
	usersvc      userdomain.Service
	catalogsvc   catalogdomain.CatalogService
	ordersvc     orderdomain.Service
	tasksvc      taskdomain.Service
	rfidsvc      rfiddomain.Service
	deliverysvc  deliverydomain.Service
	invoicesvc   invoicedomain.Service
	settingssvc  settingsdomain.Service
	notifysvc    notificationdomain.Service
	reportingsvc reportingdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Authsvc      authdomain.Service
	Usersvc      userdomain.Service
	Catalogsvc   catalogdomain.CatalogService
	Ordersvc     orderdomain.Service
	Tasksvc      taskdomain.Service
	Rfidsvc      rfiddomain.Service
	Deliverysvc  deliverydomain.Service
	Invoicesvc   invoicedomain.Service
	Settingssvc  settingsdomain.Service
	Notifysvc    notificationdomain.Service
	Reportingsvc reportingdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          p.Log.Named("http.server"),
		authsvc:      p.Authsvc,
		usersvc:      p.Usersvc,
		catalogsvc:   p.Catalogsvc,
		ordersvc:     p.Ordersvc,
		tasksvc:      p.Tasksvc,
		rfidsvc:      p.Rfidsvc,
		deliverysvc:  p.Deliverysvc,
		invoicesvc:   p.Invoicesvc,
		settingssvc:  p.Settingssvc,
		notifysvc:    p.Notifysvc,
		reportingsvc: p.Reportingsvc,
	}
}

func RegisterRoutes(s *Server) {
	s.registerAuthRoutes()
	s.registerAPIRoutes()
}

// notify writes a best-effort in-app notification. A failed write never
// fails the request that triggered it; it is logged and dropped.
func (s *Server) notify(ctx context.Context, req notificationdomain.CreateNotificationRequest) {
	if _, err := s.notifysvc.Notify(ctx, req); err != nil {
		s.log.Warn("notification write failed",
			zap.String("kind", string(req.Kind)),
			zap.String("reference", req.Reference),
			zap.Error(err))
	}
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.AuthRequired(), s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.GET("/statistics", s.AuthRequired(), s.AccountStatistics)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	staff := s.RequireRole(userdomain.RoleAdmin, userdomain.RoleStaff)
	admin := s.RequireRole(userdomain.RoleAdmin)

	// -------- Users --------
	api.GET("/users", staff, s.ListUsers)
	api.POST("/users", admin, s.CreateUser)
	api.GET("/users/stats", staff, s.UserStats)
	api.GET("/users/:id", s.GetUserByID)
	api.PATCH("/users/:id", s.UpdateUser)
	api.DELETE("/users/:id", admin, s.DeleteUser)
	api.GET("/users/:id/preferences", s.GetPreferences)
	api.PUT("/users/:id/preferences", s.UpdatePreferences)

	// -------- Service catalog --------
	api.GET("/services", s.ListServices)
	api.POST("/services", admin, s.CreateService)
	api.GET("/services/stats", staff, s.ServiceStats)
	api.GET("/services/:id", s.GetServiceByID)
	api.PATCH("/services/:id", admin, s.UpdateService)
	api.DELETE("/services/:id", admin, s.DeleteService)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/stats", staff, s.OrderStats)
	api.GET("/orders/:id", s.GetOrderByID)
	api.PATCH("/orders/:id", staff, s.UpdateOrder)
	api.DELETE("/orders/:id", admin, s.DeleteOrder)
	api.POST("/orders/:id/stage", staff, s.UpdateOrderStage)
	api.POST("/orders/:id/recalculate", staff, s.RecalculateOrder)
	api.GET("/orders/:id/timeline", s.OrderTimeline)
	api.GET("/orders/:id/invoice", s.GetInvoiceByOrder)

	// -------- Order items --------
	api.POST("/order-items", staff, s.AddOrderItem)
	api.GET("/order-items/:id", s.GetOrderItemByID)
	api.PATCH("/order-items/:id", staff, s.UpdateOrderItem)
	api.DELETE("/order-items/:id", staff, s.DeleteOrderItem)

	// -------- Tasks --------
	api.GET("/tasks", staff, s.ListTasks)
	api.POST("/tasks", staff, s.CreateTask)
	api.GET("/tasks/stats", staff, s.TaskStats)
	api.GET("/tasks/:id", staff, s.GetTaskByID)
	api.PATCH("/tasks/:id", staff, s.UpdateTask)
	api.DELETE("/tasks/:id", staff, s.DeleteTask)
	api.POST("/tasks/:id/status", staff, s.UpdateTaskStatus)
	api.POST("/tasks/:id/advance", staff, s.AdvanceTask)

	// -------- RFID tags --------
	api.GET("/rfid-tags", staff, s.ListTags)
	api.POST("/rfid-tags", staff, s.CreateTag)
	api.GET("/rfid-tags/stats", staff, s.TagStats)
	api.GET("/rfid-tags/:id", staff, s.GetTagByID)
	api.PATCH("/rfid-tags/:id", staff, s.UpdateTag)
	api.DELETE("/rfid-tags/:id", staff, s.DeleteTag)
	api.POST("/rfid-tags/:id/verify", staff, s.VerifyTag)

	// -------- Deliveries --------
	api.GET("/deliveries", s.ListDeliveries)
	api.POST("/deliveries", staff, s.CreateDelivery)
	api.GET("/deliveries/stats", staff, s.DeliveryStats)
	api.GET("/deliveries/:id", s.GetDeliveryByID)
	api.PATCH("/deliveries/:id", staff, s.UpdateDelivery)
	api.DELETE("/deliveries/:id", staff, s.DeleteDelivery)
	api.POST("/deliveries/:id/status", staff, s.UpdateDeliveryStatus)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices/generate", staff, s.GenerateInvoice)
	api.GET("/invoices/stats", staff, s.InvoiceStats)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.GET("/invoices/:id/pdf", s.InvoicePDF)
	api.POST("/invoices/:id/paid", staff, s.MarkInvoicePaid)
	api.POST("/invoices/:id/void", admin, s.VoidInvoice)

	// -------- Notifications --------
	api.GET("/notifications", s.ListNotifications)
	api.GET("/notifications/unread-count", s.UnreadNotificationCount)
	api.POST("/notifications/read-all", s.MarkAllNotificationsRead)
	api.POST("/notifications/:id/read", s.MarkNotificationRead)
	api.DELETE("/notifications/:id", s.DeleteNotification)

	// -------- Settings --------
	api.GET("/settings", s.GetSettings)
	api.PATCH("/settings", admin, s.UpdateSettings)

	// -------- Reports --------
	api.GET("/reports/financial-summary", staff, s.FinancialSummary)
	api.GET("/reports/completed-orders", staff, s.CompletedOrders)
	api.GET("/reports/monthly-analytics", staff, s.MonthlyAnalytics)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
