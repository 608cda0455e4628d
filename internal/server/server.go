package server

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/handlers"
	"portfolio-chat/internal/logging"
	"portfolio-chat/internal/middleware"
	"portfolio-chat/internal/observability"
	"portfolio-chat/internal/rabbitmq"
	"portfolio-chat/internal/repositories"
	"portfolio-chat/internal/service"
	"portfolio-chat/internal/telemetry"
	"portfolio-chat/internal/ws"
)

// Options are the dependencies of a Server.
type Options struct {
	DB        *sqlx.DB
	Config    *config.Config
	Logger    zerolog.Logger
	Publisher rabbitmq.Publisher
}

// Server is the assembled HTTP application.
type Server struct {
	Engine *gin.Engine
	Hub    *ws.Hub

	limiter *middleware.RateLimiter
}

// New wires repositories, services and handlers into a gin engine. The
// default room is resolved once here; when it cannot be resolved, requests
// that name no room fail with 404.
func New(ctx context.Context, opts Options) (*Server, error) {
	cfg := opts.Config

	rooms := repositories.NewRoomRepo(opts.DB)
	messages := repositories.NewMessageRepo(opts.DB)
	admins := repositories.NewAdminRepo(opts.DB)
	contacts := repositories.NewContactRepo(opts.DB)

	defaultRoom, err := service.ResolveDefaultRoom(ctx, rooms, cfg.Chat.DefaultRoomID, cfg.Chat.DefaultRoomName)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			return nil, err
		}
		logging.Ctx(ctx).Warn().Err(err).Msg("default room unavailable, messages must name a room")
	}

	hub := ws.NewHub()
	chat := service.NewChatService(rooms, messages, hub, defaultRoom)
	auth, err := service.NewAuthService(admins, service.AuthConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, err
	}
	adminSvc := service.NewAdminService(rooms, messages, chat, hub)

	var emitter *telemetry.AuditEmitter
	if opts.Publisher != nil {
		emitter = telemetry.NewAuditEmitter(opts.Publisher, cfg.AMQP.RoutingKey, cfg.Telemetry.ServiceName, cfg.Telemetry.Environment)
	}

	chatHandler := handlers.NewChatHandler(chat)
	adminHandler := handlers.NewAdminHandler(auth, adminSvc, emitter)
	contactHandler := handlers.NewContactHandler(service.NewContactService(contacts), emitter)
	roomWS := ws.NewRoomWebSocketHandler(hub, rooms)
	limiter := middleware.NewRateLimiter(cfg.Auth.LoginPerMinute, time.Minute)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	router.Use(logging.GinMiddleware(opts.Logger))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/healthz", handlers.Health(opts.DB))
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	router.GET("/rooms", chatHandler.ListRooms)
	router.GET("/messages", chatHandler.GetMessages)
	router.POST("/messages", chatHandler.PostMessage)
	router.POST("/chat", chatHandler.Chat)
	router.POST("/contact", contactHandler.Submit)

	router.POST("/admin/auth", limiter.Middleware(), adminHandler.Auth)
	router.POST("/admin/setup", limiter.Middleware(), adminHandler.Setup)
	router.POST("/admin/manage", middleware.AdminAuth(auth), adminHandler.Manage)

	router.GET("/ws/rooms/:room_id", roomWS.Handle)

	handlers.RegisterDebugRoutes(router, emitter, opts.Publisher, cfg.Server.Debug)

	return &Server{Engine: router, Hub: hub, limiter: limiter}, nil
}

// StartBackground starts housekeeping goroutines until Close.
func (s *Server) StartBackground() {
	s.limiter.StartCleanup(5 * time.Minute)
}

func (s *Server) Close() {
	s.limiter.Stop()
}
