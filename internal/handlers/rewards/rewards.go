package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/dto"
	"github.com/GlebRadaev/rewardsledger/pkg/auth"
	"github.com/GlebRadaev/rewardsledger/pkg/utils"
)

//go:generate mockgen -destination=mock_service.go -package=rewards . Service

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength matches redemptions.idempotency_key VARCHAR(128).
	MaxIdempotencyKeyLength = 128
)

type Service interface {
	GetRewardsView(ctx context.Context, accountID int) *domain.RewardsView
	AnonymousView(ctx context.Context) *domain.RewardsView
	Claim(ctx context.Context, accountID, rewardItemID int, idempotencyKey string) (*domain.Redemption, error)
	History(ctx context.Context, accountID int, cursor string, limit int) (*domain.TransactionPage, error)
	Reconcile(ctx context.Context, accountID int) (*domain.ReconcileReport, error)
}

type RewardsHandler struct {
	rewardsService Service
}

func New(rewardsService Service) *RewardsHandler {
	return &RewardsHandler{
		rewardsService: rewardsService,
	}
}

// GetRewards godoc
//
//	@Summary		Get rewards dashboard
//	@Description	Balance, tier progress, recent transactions, redeemable rewards and redemption history. Anonymous callers get a synthetic sample view.
//	@Tags			Rewards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.RewardsViewDTO
//	@Router			/rewards [get]
func (h *RewardsHandler) GetRewards(w http.ResponseWriter, r *http.Request) {
	var view *domain.RewardsView
	if accountID, ok := auth.UserIDFromContext(r.Context()); ok {
		view = h.rewardsService.GetRewardsView(r.Context(), accountID)
	} else {
		view = h.rewardsService.AnonymousView(r.Context())
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewRewardsViewDTO(view))
}

// ClaimReward godoc
//
//	@Summary		Redeem a reward
//	@Description	Exchange points for a reward item. A repeated Idempotency-Key returns the original redemption. Keys longer than 128 characters are rejected.
//	@Tags			Rewards
//	@Accept			json
//	@Produce		json
//	@Param			request			body		dto.ClaimRequestDTO	true	"Reward to redeem"
//	@Param			Idempotency-Key	header		string				false	"Client generated key for safe retries"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ClaimResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid request or insufficient points"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"Reward not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/rewards/claim [post]
func (h *RewardsHandler) ClaimReward(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.ClaimRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RewardID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Reward ID is required")
		return
	}

	idempotencyKey := r.Header.Get(IdempotencyKeyHeader)
	if utf8.RuneCountInString(idempotencyKey) > MaxIdempotencyKeyLength {
		utils.RespondWithError(w, http.StatusBadRequest, "Idempotency key is too long")
		return
	}

	redemption, err := h.rewardsService.Claim(r.Context(), accountID, req.RewardID, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRewardNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Reward not found")
		case errors.Is(err, domain.ErrInsufficientPoints):
			utils.RespondWithError(w, http.StatusBadRequest, "Insufficient points")
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ClaimResponseDTO{
		Success:      true,
		Message:      "Redeemed: " + redemption.RewardName,
		RedemptionID: redemption.ID,
	})
}

// GetTransactions godoc
//
//	@Summary		Get points history
//	@Description	Ledger entries newest first, paged with an opaque cursor
//	@Tags			Rewards
//	@Produce		json
//	@Param			cursor	query	string	false	"Cursor from the previous page"
//	@Param			limit	query	int		false	"Page size, 10 by default, at most 100"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.TransactionPageDTO
//	@Failure		400	{object}	utils.Response	"Invalid cursor or limit"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/rewards/transactions [get]
func (h *RewardsHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	page, err := h.rewardsService.History(r.Context(), accountID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid cursor")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.TransactionPageDTO{
		Transactions: dto.NewTransactionDTOs(page.Transactions),
		NextCursor:   page.NextCursor,
	})
}

// Reconcile godoc
//
//	@Summary		Check balance against the ledger
//	@Tags			Rewards
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.ReconcileResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/rewards/reconcile [get]
func (h *RewardsHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	report, err := h.rewardsService.Reconcile(r.Context(), accountID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ReconcileResponseDTO{
		Cached:   report.Cached,
		Computed: report.Computed,
		InSync:   report.InSync,
	})
}
