package service

import (
	"github.com/GlebRadaev/rewardsledger/internal/config"
	"github.com/GlebRadaev/rewardsledger/internal/handlers/auth"
	"github.com/GlebRadaev/rewardsledger/internal/handlers/health"
	"github.com/GlebRadaev/rewardsledger/internal/handlers/rewards"
	"github.com/GlebRadaev/rewardsledger/internal/repo"
	"github.com/GlebRadaev/rewardsledger/internal/tiers"

	pkgauth "github.com/GlebRadaev/rewardsledger/pkg/auth"

	authservice "github.com/GlebRadaev/rewardsledger/internal/service/authservice"
	ledgerservice "github.com/GlebRadaev/rewardsledger/internal/service/ledgerservice"
	purchaseservice "github.com/GlebRadaev/rewardsledger/internal/service/purchaseservice"
	redemptionservice "github.com/GlebRadaev/rewardsledger/internal/service/redemptionservice"
	rewardsservice "github.com/GlebRadaev/rewardsledger/internal/service/rewardsservice"
)

type Services struct {
	AuthService     auth.Service
	RewardsService  rewards.Service
	PurchaseService *purchaseservice.Service
	Health          health.Pinger
	JWTService      *pkgauth.JWTService
}

func New(repos *repo.Repositories, catalog *tiers.Catalog, cfg *config.Config) *Services {
	ledger := ledgerservice.New(repos.AccountRepo, repos.TransactionRepo, repos.TxManager, catalog, cfg.WriteTimeout)
	redemption := redemptionservice.New(repos.AccountRepo, repos.RewardRepo, repos.RedemptionRepo, ledger, repos.TxManager, cfg.WriteTimeout)
	rewardsService := rewardsservice.New(ledger, redemption, repos.RewardRepo, catalog, rewardsservice.NewSyntheticStrategy(catalog), cfg.ViewTimeout)
	purchaseService := purchaseservice.New(repos.PurchaseRepo, ledger, repos.TxManager, cfg.PointsPerUnit)

	jwtService := pkgauth.NewJWTService(cfg.JWTSecret)
	authService := authservice.New(repos.UserRepo, ledger, repos.TxManager, &pkgauth.HashService{}, jwtService, cfg.TokenTTL)

	return &Services{
		AuthService:     authService,
		RewardsService:  rewardsService,
		PurchaseService: purchaseService,
		Health:          repos.Pinger,
		JWTService:      jwtService,
	}
}
