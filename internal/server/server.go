package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"gymhub/internal/auth"
	"gymhub/internal/config"
	"gymhub/internal/equipment"
	"gymhub/internal/gymclass"
	"gymhub/internal/logger"
	"gymhub/internal/membership"
	"gymhub/internal/payment"
	"gymhub/internal/registration"
	"gymhub/internal/session"
	"gymhub/internal/user"
)

// Notifier is everything the domain services send by e-mail. *email.Service
// satisfies it.
type Notifier interface {
	registration.Notifier
	session.Notifier
	membership.Notifier
	payment.Notifier
}

type Handlers struct {
	User         *user.Handler
	GymClass     *gymclass.Handler
	Registration *registration.Handler
	Session      *session.Handler
	Membership   *membership.Handler
	Equipment    *equipment.Handler
	Payment      *payment.Handler
}

func tokenKeys(cfg *config.Config) auth.Keys {
	return auth.Keys{Access: cfg.JWTSecret, Refresh: cfg.JWTRefreshSecret}
}

// NewHandlers wires repositories, transactors and services over database.
func NewHandlers(database *sqlx.DB, cfg *config.Config, notifier Notifier) *Handlers {
	userRepo := user.NewRepository(database)

	return &Handlers{
		User: user.NewHandler(user.NewService(userRepo, tokenKeys(cfg))),
		GymClass: gymclass.NewHandler(gymclass.NewService(
			gymclass.NewRepository(database),
			gymclass.NewTransactor(database),
		)),
		Registration: registration.NewHandler(registration.NewService(
			registration.NewRepository(database),
			registration.NewAnalyticsRepository(database),
			registration.NewTransactor(database),
			notifier,
		)),
		Session: session.NewHandler(session.NewService(
			session.NewRepository(database),
			session.NewTransactor(database),
			notifier,
		)),
		Membership: membership.NewHandler(membership.NewService(
			membership.NewRepository(database),
			membership.NewTransactor(database),
			notifier,
		)),
		Equipment: equipment.NewHandler(equipment.NewService(equipment.NewRepository(database))),
		Payment:   payment.NewHandler(payment.NewService(payment.NewRepository(database), userRepo, notifier)),
	}
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(database *sqlx.DB, rdb *redis.Client, cfg *config.Config, notifier Notifier) *Server {
	authLimiter := NewAuthRateLimiter(rdb, cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)

	router := NewRouter(cfg, NewHandlers(database, cfg, notifier), authLimiter.Middleware())
	router.GET("/health", Health(database, rdb))

	return &Server{
		router: router,
		config: cfg,
		http: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// NewRouter builds the engine with middleware, system routes and the /api
// tree. authLimit guards the credential endpoints.
func NewRouter(cfg *config.Config, h *Handlers, authLimit gin.HandlerFunc) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestid.New(),
		CORSMiddleware(cfg.CORSOrigins),
		TracingMiddleware(),
		RequestLoggingMiddleware(),
		MetricsMiddleware(),
		RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	)

	router.GET("/health/live", Live)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	authMiddleware := auth.AuthMiddleware(tokenKeys(cfg))
	base := router.Group("/api")

	authRoutes := base.Group("/auth")
	{
		authRoutes.POST("/signup", authLimit, h.User.Signup)
		authRoutes.POST("/signin", authLimit, h.User.Signin)
		authRoutes.POST("/refresh", authLimit, h.User.Refresh)
		authRoutes.GET("/me", authMiddleware, h.User.Me)
	}

	protected := base.Group("")
	protected.Use(authMiddleware)

	registerUserRoutes(protected.Group("/users"), h.User)
	registerGymClassRoutes(protected.Group("/gym-classes"), h.GymClass)
	registerRegistrationRoutes(protected.Group("/class-registrations"), h.Registration)
	registerSessionRoutes(protected.Group("/training-sessions"), h.Session)
	registerMembershipRoutes(protected.Group("/memberships"), h.Membership)
	registerEquipmentRoutes(protected.Group("/equipment"), h.Equipment)
	registerPaymentRoutes(protected.Group("/payments"), h.Payment)

	return router
}

var (
	adminOnly  = auth.RequireRole(auth.RoleAdmin)
	frontDesk  = auth.RequireRole(auth.RoleAdmin, auth.RoleStaff)
	staffRoles = auth.RequireRole(auth.StaffRoles...)
)

func frontDeskOrSelf(param string) gin.HandlerFunc {
	return auth.RequireRoleOrSelf(param, auth.RoleAdmin, auth.RoleStaff)
}

func staffOrSelf(param string) gin.HandlerFunc {
	return auth.RequireRoleOrSelf(param, auth.StaffRoles...)
}

func registerUserRoutes(g *gin.RouterGroup, h *user.Handler) {
	g.GET("", frontDesk, h.List)
	g.GET("/trainers", h.ListByRole(auth.RoleTrainer))
	g.GET("/members", frontDesk, h.ListByRole(auth.RoleMember))
	g.GET("/staff", frontDesk, h.ListByRole(auth.RoleStaff))
	g.GET("/admins", frontDesk, h.ListByRole(auth.RoleAdmin))
	g.GET("/:id", frontDeskOrSelf("id"), h.GetByID)
	g.PUT("/:id", frontDeskOrSelf("id"), h.Update)
	g.DELETE("/:id", adminOnly, h.Delete)
}

func registerGymClassRoutes(g *gin.RouterGroup, h *gymclass.Handler) {
	g.GET("", h.List)
	g.GET("/available", h.ListAvailable)
	g.GET("/full", h.ListFull)
	g.GET("/status/:status", h.ListByStatus)
	g.GET("/trainer/:trainerId", h.ListByTrainer(false))
	g.GET("/trainer/:trainerId/active", h.ListByTrainer(true))
	g.GET("/type/:type", h.ListByType(false))
	g.GET("/type/:type/active", h.ListByType(true))
	g.GET("/location/:location", h.ListByLocation)
	g.GET("/day/:day", h.ListByDay)
	g.GET("/time-range", h.ListByTimeRange)
	g.GET("/search", h.Search)
	g.GET("/count/active", h.CountActive)
	g.GET("/:id", h.Get)

	g.POST("", frontDesk, h.Create)
	g.PUT("/:id", frontDesk, h.Update)
	g.PUT("/:id/status", frontDesk, h.UpdateStatus)
	g.PUT("/:id/enrollment", adminOnly, h.SetEnrollment)
	g.DELETE("/:id", adminOnly, h.Delete)
}

func registerRegistrationRoutes(g *gin.RouterGroup, h *registration.Handler) {
	// Ownership for these is decided by the service from the body or record.
	g.POST("/register", h.Register)
	g.PUT("/:id/cancel", h.Cancel)
	g.GET("/is-registered", h.IsRegistered)

	g.GET("", staffRoles, h.List)
	g.GET("/member/:memberId", staffOrSelf("memberId"), h.ListByMember)
	g.GET("/member/:memberId/upcoming", staffOrSelf("memberId"), h.ListUpcomingByMember)
	g.GET("/member/:memberId/attended-count", staffOrSelf("memberId"), h.CountAttendedByMember)
	g.GET("/class/:classId", staffRoles, h.ListByClass)
	g.GET("/class/:classId/count", staffRoles, h.CountRegistered)
	g.GET("/status/:status", staffRoles, h.ListByStatus)
	g.GET("/date-range", staffRoles, h.ListByDateRange)
	g.GET("/analytics", frontDesk, h.Analytics)
	g.GET("/:id", staffRoles, h.Get)

	g.PUT("/:id/status", staffRoles, h.UpdateStatus)
	g.PUT("/:id/attend", staffRoles, h.MarkAttendance)
	g.PUT("/:id/no-show", staffRoles, h.MarkNoShow)
	g.DELETE("/:id", adminOnly, h.Delete)
}

func registerSessionRoutes(g *gin.RouterGroup, h *session.Handler) {
	g.POST("", staffRoles, h.Create)
	g.POST("/book", auth.RequireRole(auth.RoleMember), h.Book)

	g.GET("", staffRoles, h.List)
	g.GET("/upcoming", staffRoles, h.ListUpcoming)
	g.GET("/trainer/:trainerId", staffRoles, h.ListByTrainer)
	g.GET("/trainer/:trainerId/upcoming", staffRoles, h.ListUpcomingByTrainer)
	g.GET("/trainer/:trainerId/completed-count", staffRoles, h.CountCompletedByTrainer)
	g.GET("/member/:memberId", staffOrSelf("memberId"), h.ListByMember)
	g.GET("/member/:memberId/upcoming", staffOrSelf("memberId"), h.ListUpcomingByMember)
	g.GET("/member/:memberId/completed-count", staffOrSelf("memberId"), h.CountCompletedByMember)
	g.GET("/status/:status", staffRoles, h.ListByStatus)
	g.GET("/date-range", staffRoles, h.ListByDateRange)
	g.GET("/type/:type/scheduled", staffRoles, h.ListScheduledByType)
	g.GET("/:id", staffRoles, h.Get)

	g.PUT("/:id", staffRoles, h.Update)
	g.PUT("/:id/status", staffRoles, h.UpdateStatus)
	g.PUT("/:id/reschedule", staffRoles, h.Reschedule)
	g.DELETE("/:id", frontDesk, h.Delete)
}

func registerMembershipRoutes(g *gin.RouterGroup, h *membership.Handler) {
	g.GET("/plans", h.Plans)

	g.GET("/user/:userId", frontDeskOrSelf("userId"), h.ListByUser)
	g.GET("/user/:userId/active", frontDeskOrSelf("userId"), h.ListActiveByUser)
	g.GET("/user/:userId/has-active", frontDeskOrSelf("userId"), h.HasActive)

	g.GET("", frontDesk, h.List)
	g.GET("/status/:status", frontDesk, h.ListByStatus)
	g.GET("/type/:type", frontDesk, h.ListByType)
	g.GET("/expiring", frontDesk, h.ListExpiring)
	g.GET("/expired", frontDesk, h.ListExpired)
	g.GET("/count/active", frontDesk, h.CountActive)
	g.GET("/:id", frontDesk, h.Get)

	g.POST("", frontDesk, h.Create)
	g.PUT("/:id", frontDesk, h.Update)
	g.PUT("/:id/status", frontDesk, h.UpdateStatus)
	g.PUT("/:id/renew", frontDesk, h.Renew)
	g.DELETE("/:id", frontDesk, h.Delete)
	g.POST("/expire-overdue", adminOnly, h.ExpireOverdue)
}

func registerEquipmentRoutes(g *gin.RouterGroup, h *equipment.Handler) {
	g.Use(frontDesk)

	g.GET("", h.List)
	g.GET("/status/:status", h.ListByStatus)
	g.GET("/type/:type", h.ListByType)
	g.GET("/location/:location", h.ListByLocation)
	g.GET("/available", h.ListAvailable)
	g.GET("/maintenance-needed", h.ListNeedingMaintenance)
	g.GET("/warranty-expiring", h.ListWarrantyExpiring)
	g.GET("/purchased", h.ListPurchasedBetween)
	g.GET("/search", h.Search)
	g.GET("/count/available", h.CountAvailable)
	g.GET("/count/maintenance", h.CountInMaintenance)
	g.GET("/:id", h.Get)

	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.PUT("/:id/status", h.UpdateStatus)
	g.PUT("/:id/maintenance/schedule", h.ScheduleMaintenance)
	g.PUT("/:id/maintenance/complete", h.CompleteMaintenance)
	g.PUT("/:id/warranty", adminOnly, h.SetWarrantyExpiry)
	g.DELETE("/:id", adminOnly, h.Delete)
}

func registerPaymentRoutes(g *gin.RouterGroup, h *payment.Handler) {
	g.GET("/user/:userId", frontDeskOrSelf("userId"), h.ListByUser)
	g.GET("/user/:userId/completed", frontDeskOrSelf("userId"), h.ListCompletedByUser)
	g.GET("/user/:userId/total", frontDeskOrSelf("userId"), h.TotalPaidByUser)
	g.GET("/user/:userId/date-range", frontDeskOrSelf("userId"), h.ListByUserAndDateRange)

	g.POST("", frontDesk, h.Create)
	g.POST("/membership", frontDesk, h.CreateQuick(payment.TypeMembershipFee))
	g.POST("/class", frontDesk, h.CreateQuick(payment.TypeClassFee))
	g.POST("/training", frontDesk, h.CreateQuick(payment.TypeTrainingSession))

	g.GET("", frontDesk, h.List)
	g.GET("/status/:status", frontDesk, h.ListByStatus)
	g.GET("/type/:type", frontDesk, h.ListByType)
	g.GET("/method/:method", frontDesk, h.ListByMethod)
	g.GET("/date-range", frontDesk, h.ListByDateRange)
	g.GET("/overdue", frontDesk, h.ListOverdue)
	g.GET("/high-value", frontDesk, h.ListHighValue)
	g.GET("/revenue", frontDesk, h.Revenue)
	g.GET("/count/completed", frontDesk, h.CountCompleted)
	g.GET("/count/pending", frontDesk, h.CountPending)
	g.GET("/:id", frontDesk, h.Get)

	g.PUT("/:id", frontDesk, h.Update)
	g.PUT("/:id/process", frontDesk, h.Process)
	g.PUT("/:id/cancel", frontDesk, h.Cancel)
	g.PUT("/:id/refund", frontDesk, h.Refund)
	g.DELETE("/:id", adminOnly, h.Delete)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	logger.Info("HTTP server listening", "addr", s.http.Addr, "environment", s.config.Environment)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
