package purchases

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
	"github.com/GlebRadaev/rewardsledger/internal/dto"
	"github.com/GlebRadaev/rewardsledger/pkg/auth"
	"github.com/GlebRadaev/rewardsledger/pkg/utils"
	"github.com/GlebRadaev/rewardsledger/pkg/validate"
)

//go:generate mockgen -destination=mock_service.go -package=purchases . Service

type Service interface {
	RegisterPurchase(ctx context.Context, accountID int, orderNumber string) (*domain.Purchase, error)
	GetPurchases(ctx context.Context, accountID int) ([]domain.Purchase, error)
}

type PurchaseHandler struct {
	purchaseService Service
}

func New(purchaseService Service) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// AddPurchase godoc
//
//	@Summary		Register a storefront purchase
//	@Description	Register a paid order number; points are credited once the payment system confirms the amount.
//	@Tags			Purchases
//	@Accept			text/plain
//	@Produce		json
//	@Param			orderNumber	body	string	true	"Order number"
//	@Security		BearerAuth
//	@Success		202	{object}	dto.GetPurchasesResponseDTO	"Purchase accepted for processing"
//	@Success		200	{object}	utils.Response				"Purchase already registered by this account"
//	@Failure		400	{object}	utils.Response				"Empty order number"
//	@Failure		401	{object}	utils.Response				"User not authorized"
//	@Failure		409	{object}	utils.Response				"Purchase registered by another account"
//	@Failure		422	{object}	utils.Response				"Invalid order number"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/rewards/purchases [post]
func (h *PurchaseHandler) AddPurchase(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	orderNumber := strings.TrimSpace(string(body))
	if orderNumber == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Order number is required")
		return
	}
	if !validate.IsLuhn(orderNumber) {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Invalid order number")
		return
	}

	purchase, err := h.purchaseService.RegisterPurchase(r.Context(), accountID, orderNumber)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPurchaseAlreadyExistsByUser):
			utils.RespondWithError(w, http.StatusOK, err.Error())
		case errors.Is(err, domain.ErrPurchaseAlreadyExists):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	utils.RespondWithJSON(w, http.StatusAccepted, toDTO(*purchase))
}

// GetPurchases godoc
//
//	@Summary		List registered purchases
//	@Tags			Purchases
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		dto.GetPurchasesResponseDTO
//	@Success		204	{object}	utils.Response	"No data available"
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/rewards/purchases [get]
func (h *PurchaseHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	purchases, err := h.purchaseService.GetPurchases(r.Context(), accountID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(purchases) == 0 {
		utils.RespondWithError(w, http.StatusNoContent, "No data available")
		return
	}

	response := make([]dto.GetPurchasesResponseDTO, 0, len(purchases))
	for _, p := range purchases {
		response = append(response, toDTO(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func toDTO(p domain.Purchase) dto.GetPurchasesResponseDTO {
	return dto.GetPurchasesResponseDTO{
		Number:     p.OrderNumber,
		Status:     string(p.Status),
		Points:     p.Points,
		UploadedAt: p.UploadedAt.Format(time.RFC3339),
	}
}
