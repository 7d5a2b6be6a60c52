package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"taskhub/internal/pkg/auth/jwt"
	"taskhub/internal/pkg/limiter"
	"taskhub/internal/pkg/logx"
	"taskhub/internal/pkg/resp"
)

const (
	LoginRate   = 0.2
	LoginBurst  = 5
	SocketRate  = 0.5
	SocketBurst = 10
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It returns the handler and a stop function releasing the rate limiters.
func Router(deps *AppDeps) (http.Handler, func()) {
	loginLimiter := limiter.NewIPRateLimiter(rate.Limit(LoginRate), LoginBurst)
	socketLimiter := limiter.NewIPRateLimiter(rate.Limit(SocketRate), SocketBurst)

	stop := func() {
		loginLimiter.Stop()
		socketLimiter.Stop()
	}

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(Recoverer)

	r.NotFound(HandleNotFound)
	r.MethodNotAllowed(HandleMethodNotAllowed)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, "OK", map[string]string{
			"status":  "ok",
			"service": "taskhub",
		})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Verifier))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", HandleRegister(deps))
			auth.With(loginLimiter.Middleware).Post("/login", HandleLogin(deps))
			auth.With(jwt.RequireIdentity).Get("/profile", HandleGetUserProfile(deps))
		})

		api.Route("/tasks", func(tasks chi.Router) {
			tasks.Use(jwt.RequireIdentity)

			tasks.Post("/", HandleCreateTask(deps))
			tasks.Get("/", HandleListTasks(deps))
			tasks.Get("/{id}", HandleGetTask(deps))
			tasks.Put("/{id}", HandleUpdateTask(deps))
			tasks.Delete("/{id}", HandleDeleteTask(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(deps, wsUpgrader, socketLimiter))

	return r, stop
}
