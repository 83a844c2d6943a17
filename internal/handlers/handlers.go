package handlers

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/rewardsledger/docs"
	authhandlers "github.com/GlebRadaev/rewardsledger/internal/handlers/auth"
	healthhandlers "github.com/GlebRadaev/rewardsledger/internal/handlers/health"
	purchasehandlers "github.com/GlebRadaev/rewardsledger/internal/handlers/purchases"
	rewardshandlers "github.com/GlebRadaev/rewardsledger/internal/handlers/rewards"
	"github.com/GlebRadaev/rewardsledger/internal/service"
	"github.com/GlebRadaev/rewardsledger/pkg/auth"
	"github.com/GlebRadaev/rewardsledger/pkg/logger"
)

//go:generate mockgen -destination=mock_handlers.go -package=handlers . AuthHandler,RewardsHandler,PurchaseHandler,HealthHandler

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type RewardsHandler interface {
	GetRewards(w http.ResponseWriter, r *http.Request)
	ClaimReward(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
}

type PurchaseHandler interface {
	AddPurchase(w http.ResponseWriter, r *http.Request)
	GetPurchases(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Check(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler     AuthHandler
	RewardsHandler  RewardsHandler
	PurchaseHandler PurchaseHandler
	HealthHandler   HealthHandler

	Auth        *auth.Middleware
	CORSOrigins []string
	AccessLog   io.Writer
}

func New(s *service.Services, corsOrigins []string) *Handlers {
	return &Handlers{
		AuthHandler:     authhandlers.New(s.AuthService),
		RewardsHandler:  rewardshandlers.New(s.RewardsService),
		PurchaseHandler: purchasehandlers.New(s.PurchaseService),
		HealthHandler:   healthhandlers.New(s.Health),
		Auth:            auth.NewMiddleware(s.JWTService),
		CORSOrigins:     corsOrigins,
		AccessLog:       os.Stdout,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	accessLog := h.AccessLog
	if accessLog == nil {
		accessLog = io.Discard
	}
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		logger.AccessLog(accessLog),
		cors.Handler(cors.Options{
			AllowedOrigins:   h.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", rewardshandlers.IdempotencyKeyHeader, logger.RequestIDHeader},
			ExposedHeaders:   []string{"Authorization", logger.RequestIDHeader},
			AllowCredentials: false,
			MaxAge:           300,
		}),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Get("/health", h.HealthHandler.Check)

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)
	})

	r.Route("/rewards", func(r chi.Router) {
		r.With(h.Auth.OptionalAuth).Get("/", h.RewardsHandler.GetRewards)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Post("/claim", h.RewardsHandler.ClaimReward)
			r.Get("/transactions", h.RewardsHandler.GetTransactions)
			r.Get("/reconcile", h.RewardsHandler.Reconcile)
			r.Route("/purchases", func(r chi.Router) {
				r.Post("/", h.PurchaseHandler.AddPurchase)
				r.Get("/", h.PurchaseHandler.GetPurchases)
			})
		})
	})

	return r
}
