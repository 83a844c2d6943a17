package authservice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/pg"
	"github.com/GlebRadaev/rewardsledger/pkg/auth"
)

//go:generate mockgen -destination=mock_repo.go -package=authservice . Repo,Accounts

const defaultTokenTTL = 15 * time.Minute

var ErrInvalidCredentials = errors.New("invalid credentials")

type Repo interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// Accounts opens the rewards account of a new user.
type Accounts interface {
	EnsureAccount(ctx context.Context, accountID int) (*domain.Account, error)
}

type Service struct {
	userRepo    Repo
	accounts    Accounts
	txManager   pg.TXManager
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	tokenTTL    time.Duration
}

func New(repo Repo, accounts Accounts, txManager pg.TXManager, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &Service{
		userRepo:    repo,
		accounts:    accounts,
		txManager:   txManager,
		hashService: hashService,
		jwtService:  jwtService,
		tokenTTL:    tokenTTL,
	}
}

// Register creates the user and its rewards account in one transaction.
func (s *Service) Register(ctx context.Context, login, password string) (*domain.User, error) {
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}

	var newUser *domain.User
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		existingUser, err := s.userRepo.FindByLogin(ctx, login)
		if err != nil {
			return err
		}
		if existingUser != nil {
			return domain.ErrUserExists
		}
		newUser, err = s.userRepo.Create(ctx, &domain.User{
			Login:        login,
			PasswordHash: hashedPassword,
		})
		if err != nil {
			return err
		}
		_, err = s.accounts.EnsureAccount(ctx, newUser.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			zap.L().Info("user already exists", zap.String("login", login))
		} else {
			zap.L().Error("can't register user: ", zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("login", login))
	return newUser, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user == nil || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("login", login))
		return nil, ErrInvalidCredentials
	}
	zap.L().Info("user successfully authenticated", zap.String("login", login))
	return user, nil
}

func (s *Service) GenerateToken(userID int) (string, error) {
	token, err := s.jwtService.GenerateJWT(userID, time.Now().Add(s.tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}
