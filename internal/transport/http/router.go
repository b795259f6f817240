package http

import (
	"net/http"

	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/application/user"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:       deps.UserRepo,
		OTPStore:       deps.OTPStore,
		TokenProvider:  deps.TokenProvider,
		GoogleVerifier: deps.GoogleVerifier,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:   deps.UserRepo,
		PhotoStore: deps.PhotoStore,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	userH := handler.NewUserHandler(userSvc)

	authMw := appmiddleware.Auth(deps.TokenProvider, deps.UserRepo)

	// 5 requests/second with a burst of 10 on the sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	r.Get("/", healthH.Root)

	r.Route("/auth", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/google", authH.GoogleLogin)
		r.With(sensitiveRL.Limit).Post("/send-otp", authH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
		r.Post("/logout", authH.Logout)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(authMw)
		r.Get("/", userH.List)
		r.Get("/{email}", userH.Get)
		r.Put("/{email}", userH.Update)
		r.Delete("/{email}", userH.Delete)
		r.Put("/{email}/photo", userH.UploadPhoto)
	})

	return r
}
