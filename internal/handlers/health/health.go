package health

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/rewardsledger/pkg/utils"
)

//go:generate mockgen -destination=mock_pinger.go -package=health . Pinger

const pingTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusDTO struct {
	Status string `json:"status" example:"ok"`
}

type HealthHandler struct {
	pinger Pinger
}

func New(pinger Pinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Check godoc
//
//	@Summary		Liveness and store check
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	health.StatusDTO
//	@Failure		503	{object}	utils.Response	"Store unavailable"
//	@Router			/health [get]
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, StatusDTO{Status: "ok"})
}
