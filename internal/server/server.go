package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ivyjanebarrios09-cloud/kitamo/internal/auth"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/errs"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/handler"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/live"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/middleware"
	"github.com/ivyjanebarrios09-cloud/kitamo/internal/store"
	ws "github.com/ivyjanebarrios09-cloud/kitamo/internal/websocket"
)

// Config carries the server's runtime settings.
type Config struct {
	JWTSecret     string
	TokenDuration time.Duration
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	bus         *live.Bus
	authH       *handler.AuthHandler
	roomH       *handler.RoomHandler
	expenseH    *handler.ExpenseHandler
	deadlineH   *handler.DeadlineHandler
	paymentH    *handler.PaymentHandler
	dashboardH  *handler.DashboardHandler
	profileH    *handler.ProfileHandler
	statementH  *handler.StatementHandler
	resolver    *handler.RoomResolver
	streamer    *ws.DashboardStreamer
	jwtManager  *auth.JWTManager
	rateLimiter *middleware.RateLimiter
	metrics     *middleware.Metrics
	registry    *prometheus.Registry
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	bus := live.NewBus()
	notifier := handler.NewNotifier(bus, hub)
	reporter := &errs.LogReporter{Logger: logger.With("component", "permissions")}

	userStore := store.NewUserStore(db)
	roomStore := store.NewRoomStore(db)
	expenseStore := store.NewExpenseStore(db)
	deadlineStore := store.NewDeadlineStore(db)
	paymentStore := store.NewPaymentStore(db)
	reader := store.NewRecordReader(expenseStore, paymentStore, deadlineStore, roomStore)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(userStore)
	resolver := handler.NewRoomResolver(roomStore)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Server{
		db:          db,
		hub:         hub,
		bus:         bus,
		authH:       handler.NewAuthHandler(authenticator, jwtManager, logger.With("component", "auth")),
		roomH:       handler.NewRoomHandler(roomStore, userStore, notifier, reporter, logger.With("component", "room")),
		expenseH:    handler.NewExpenseHandler(expenseStore, roomStore, notifier, reporter, logger.With("component", "expense")),
		deadlineH:   handler.NewDeadlineHandler(deadlineStore, roomStore, notifier, reporter, logger.With("component", "deadline")),
		paymentH:    handler.NewPaymentHandler(paymentStore, deadlineStore, roomStore, notifier, reporter, logger.With("component", "payment")),
		dashboardH:  handler.NewDashboardHandler(resolver, reader, reporter, logger.With("component", "dashboard")),
		profileH:    handler.NewProfileHandler(userStore, logger.With("component", "profile")),
		statementH:  handler.NewStatementHandler(roomStore, expenseStore, paymentStore, deadlineStore, userStore, reporter, logger.With("component", "statement")),
		resolver:    resolver,
		streamer:    ws.NewDashboardStreamer(bus, reader, resolver, reporter, logger.With("component", "stream")),
		jwtManager:  jwtManager,
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		metrics:     middleware.NewMetrics(registry),
		registry:    registry,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	logRequests := middleware.RequestLogger(s.logger.With("component", "http"))

	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.Handle("POST /api/auth/register", logRequests(s.rateLimiter.Wrap(http.HandlerFunc(s.authH.Register))))
	outerMux.Handle("POST /api/auth/login", logRequests(s.rateLimiter.Wrap(http.HandlerFunc(s.authH.Login))))
	outerMux.HandleFunc("GET /healthz", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Protected routes. Auth runs first so the request log carries user_id.
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.jwtManager)
	outerMux.Handle("/", authMiddleware(logRequests(protectedMux)))

	return outerMux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handle registers an instrumented route. Instrumentation wraps inside the
// mux so the matched pattern is available as the metric label.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, s.metrics.Instrument(h))
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Rooms
	s.handle(mux, "POST /api/rooms", middleware.RequireChairperson(http.HandlerFunc(s.roomH.Create)))
	s.handle(mux, "GET /api/rooms", http.HandlerFunc(s.roomH.List))
	s.handle(mux, "GET /api/rooms/{id}", http.HandlerFunc(s.roomH.Get))
	s.handle(mux, "POST /api/rooms/{id}/archive", http.HandlerFunc(s.roomH.Archive))
	s.handle(mux, "POST /api/rooms/join", s.rateLimiter.Wrap(http.HandlerFunc(s.roomH.Join)))
	s.handle(mux, "GET /api/joined-rooms", http.HandlerFunc(s.roomH.JoinedRooms))
	s.handle(mux, "GET /api/rooms/{id}/members", http.HandlerFunc(s.roomH.Members))
	s.handle(mux, "DELETE /api/rooms/{id}/members/{userID}", http.HandlerFunc(s.roomH.RemoveMember))

	// Expenses
	s.handle(mux, "POST /api/rooms/{id}/expenses", http.HandlerFunc(s.expenseH.Create))
	s.handle(mux, "GET /api/rooms/{id}/expenses", http.HandlerFunc(s.expenseH.List))

	// Fund deadlines
	s.handle(mux, "POST /api/rooms/{id}/deadlines", http.HandlerFunc(s.deadlineH.Create))
	s.handle(mux, "GET /api/rooms/{id}/deadlines", http.HandlerFunc(s.deadlineH.List))

	// Payments
	s.handle(mux, "POST /api/rooms/{id}/payments", http.HandlerFunc(s.paymentH.Create))
	s.handle(mux, "GET /api/rooms/{id}/payments", http.HandlerFunc(s.paymentH.List))
	s.handle(mux, "POST /api/rooms/{id}/payments/mark-paid", http.HandlerFunc(s.paymentH.MarkPaid))

	// Profile
	s.handle(mux, "GET /api/profile", http.HandlerFunc(s.profileH.Get))
	s.handle(mux, "PATCH /api/profile", http.HandlerFunc(s.profileH.Update))

	// Dashboard + statements
	s.handle(mux, "GET /api/dashboard", http.HandlerFunc(s.dashboardH.Get))
	s.handle(mux, "GET /api/rooms/{id}/statements/{kind}", http.HandlerFunc(s.statementH.Generate))

	// WebSocket
	s.handle(mux, "GET /ws", ws.HandleWebSocket(s.hub, s.resolver.RoomIDs, s.logger.With("component", "websocket")))
	s.handle(mux, "GET /ws/dashboard", s.streamer)
}
