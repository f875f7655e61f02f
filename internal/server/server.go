// Package server assembles the demo HTTP server.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"nerdcon-demo/internal/config"
	"nerdcon-demo/internal/handlers"
	"nerdcon-demo/internal/logs"
	"nerdcon-demo/internal/logstream"
	"nerdcon-demo/internal/middleware"
	"nerdcon-demo/internal/observability"
	"nerdcon-demo/internal/provider"
	"nerdcon-demo/internal/pubsub"
	"nerdcon-demo/internal/push"
	"nerdcon-demo/internal/rabbitmq"
	"nerdcon-demo/internal/state"
	"nerdcon-demo/internal/telemetry"
	"nerdcon-demo/internal/tracing"
)

const (
	auditRoutingKey   = "audit.demo"
	publishTimeout    = 2 * time.Second
	shutdownTimeout   = 10 * time.Second
	streamingPrefix   = "/api/events"
	readHeaderTimeout = 10 * time.Second
)

// Server owns the demo state, logs, push hub and HTTP router.
type Server struct {
	cfg *config.Config

	Store    *state.Store
	Requests *logs.Store
	Stream   *logstream.Stream
	Hub      *push.Hub

	provider  handlers.Provider
	publisher rabbitmq.Publisher
	audit     *telemetry.AuditEmitter
	router    *gin.Engine
	http      *http.Server
	mirror    *eventMirror
	subs      []pubsub.Subscription
}

// Option customizes a Server.
type Option func(*Server)

// WithProvider replaces the provider client built from the config.
func WithProvider(p handlers.Provider) Option {
	return func(s *Server) { s.provider = p }
}

// WithPublisher replaces the AMQP publisher built from the config.
func WithPublisher(p rabbitmq.Publisher) Option {
	return func(s *Server) { s.publisher = p }
}

// New wires every component. Call Close when done.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		Store:    state.NewStore(),
		Requests: logs.NewStore(logs.DefaultCapacity),
		Stream:   logstream.New(logstream.DefaultCapacity, cfg.EnableLogStream),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Hub = push.NewHub(
		push.WithHeartbeat(cfg.SSEHeartbeat),
		push.WithQueueSize(cfg.PushBuffer),
		push.WithInitialState(func() any { return s.Store.State() }),
	)
	if s.provider == nil {
		s.provider = provider.NewClient(provider.Config{
			APIKey:      cfg.StraddleAPIKey,
			Environment: cfg.StraddleEnv,
			BaseURL:     cfg.StraddleBaseURL,
		}, s.Requests, s.Stream)
	}
	if s.publisher == nil {
		s.publisher = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	}
	observability.SetPublisher(s.publisher)
	log.Printf("event publisher mode=%s reason=%q", rabbitmq.PublisherMode(s.publisher), rabbitmq.PublisherNoopReason(s.publisher))
	s.audit = telemetry.NewAuditEmitter(s.publisher, auditRoutingKey, cfg.ServiceName, cfg.Environment)

	s.mirror = newEventMirror(mirrorQueueSize, observability.PublishEvent)
	s.mirrorState()
	router, err := s.buildRouter()
	if err != nil {
		s.mirror.close()
		return nil, err
	}
	s.router = router
	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// mirrorState forwards every store event to push subscribers and, through
// the mirror queue, to the broker.
func (s *Server) mirrorState() {
	for _, event := range []string{state.EventCustomer, state.EventPaykey, state.EventCharge, state.EventReset, state.EventChange} {
		event := event
		s.subs = append(s.subs, s.Store.Subscribe(event, func(payload any) {
			if payload == nil {
				payload = struct{}{}
			}
			s.Hub.Broadcast(event, payload)
			s.mirror.enqueue(event, payload)
		}))
	}
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(s.cfg.ServiceName))
	router.Use(cors.New(corsConfig(s.cfg.CORSOrigin)))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.Tracing(middleware.TracingConfig{
		Requests:          s.Requests,
		Stream:            s.Stream,
		StreamingPrefixes: []string{streamingPrefix},
	}))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	stateHandler := handlers.NewStateHandler(s.Store, s.Requests, s.Stream, s.audit)
	eventsHandler := handlers.NewEventsHandler(s.Hub)
	webhookHandler := handlers.NewWebhookHandler(s.Store, s.Hub, s.Stream, s.audit)
	customerHandler := handlers.NewCustomerHandler(s.provider, s.Store)
	bridgeHandler := handlers.NewBridgeHandler(s.provider, s.Store)
	paykeyHandler := handlers.NewPaykeyHandler(s.provider)
	chargeHandler := handlers.NewChargeHandler(s.provider, s.Store)

	api := router.Group("/api")
	api.GET("/state", stateHandler.GetState)
	api.POST("/reset", stateHandler.Reset)
	api.GET("/logs", stateHandler.GetLogs)
	api.GET("/log-stream", stateHandler.GetLogStream)
	api.GET("/outcomes", stateHandler.GetOutcomes)

	api.GET("/events/stream", eventsHandler.Stream)
	api.GET("/events/ws", eventsHandler.WebSocket)

	api.POST("/webhooks/straddle", webhookHandler.Receive)

	api.POST("/customers", customerHandler.CreateCustomer)
	api.GET("/customers/:id", customerHandler.GetCustomer)
	if s.cfg.EnableUnmask {
		api.GET("/customers/:id/unmask", customerHandler.GetUnmasked)
	}

	api.POST("/bridge/bank-account", bridgeHandler.LinkBankAccount)

	api.GET("/paykeys/:id", paykeyHandler.GetPaykey)
	api.POST("/paykeys/:id/cancel", paykeyHandler.CancelPaykey)

	api.POST("/charges", chargeHandler.CreateCharge)
	api.GET("/charges/:id", chargeHandler.GetCharge)
	api.POST("/charges/:id/cancel", chargeHandler.CancelCharge)
	api.POST("/charges/:id/hold", chargeHandler.HoldCharge)
	api.POST("/charges/:id/release", chargeHandler.ReleaseCharge)

	if s.cfg.GeneratorURL != "" {
		proxy, err := handlers.GeneratorProxy(s.cfg.GeneratorURL)
		if err != nil {
			return nil, err
		}
		api.Any("/generator/*path", proxy)
	}

	handlers.RegisterDebugRoutes(router, s.audit, s.cfg.DebugRoutes)
	return router, nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"timestamp":    time.Now().UTC().Format(time.RFC3339Nano),
		"environment":  s.cfg.StraddleEnv,
		"push_clients": s.Hub.ClientCount(),
		"publisher":    rabbitmq.PublisherMode(s.publisher),
	})
}

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", tracing.HeaderRequestID, tracing.HeaderCorrelationID, tracing.HeaderIdempotencyKey},
		ExposeHeaders: []string{tracing.HeaderRequestID, tracing.HeaderCorrelationID, tracing.HeaderIdempotencyKey},
		MaxAge:        12 * time.Hour,
	}
	var origins []string
	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Run serves until ctx is cancelled, then disconnects push subscribers and
// shuts the HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("demo server listening on %s environment=%s", s.http.Addr, s.cfg.StraddleEnv)
		log.Printf("webhook endpoint (local): http://localhost%s/api/webhooks/straddle", s.http.Addr)
		if s.cfg.NgrokURL != "" {
			log.Printf("webhook endpoint (ngrok): %s/api/webhooks/straddle", strings.TrimRight(s.cfg.NgrokURL, "/"))
		}
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("shutting down: disconnecting %d push clients", s.Hub.ClientCount())
	s.Hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close detaches store listeners and releases the publisher.
func (s *Server) Close() error {
	for _, sub := range s.subs {
		sub.Off()
	}
	s.subs = nil
	s.Hub.Close()
	s.mirror.close()
	observability.SetPublisher(nil)
	return s.publisher.Close()
}
