package dto

import (
	"time"

	"github.com/GlebRadaev/rewardsledger/internal/domain"
)

type TransactionDTO struct {
	ID          int64  `json:"id" example:"42"`
	PointsDelta int64  `json:"pointsDelta" example:"-100"`
	Description string `json:"description" example:"Redeemed: Free Protein Sample"`
	Source      string `json:"source" example:"redemption"`
	CreatedAt   string `json:"createdAt" example:"2024-05-01T12:00:00Z"`
}

type RewardItemDTO struct {
	ID          int    `json:"id" example:"1"`
	Name        string `json:"name" example:"Free Protein Sample"`
	Description string `json:"description"`
	PointsCost  int64  `json:"pointsCost" example:"100"`
}

type RedemptionDTO struct {
	ID         int64  `json:"id" example:"7"`
	RewardID   int    `json:"rewardId" example:"1"`
	RewardName string `json:"rewardName" example:"Free Protein Sample"`
	PointsCost int64  `json:"pointsCost" example:"100"`
	Status     string `json:"status" example:"completed"`
	CreatedAt  string `json:"createdAt" example:"2024-05-01T12:00:00Z"`
}

type RewardsViewDTO struct {
	Points            int64            `json:"points" example:"250"`
	Tier              string           `json:"tier" example:"Bronze"`
	Level             int              `json:"level" example:"1"`
	NextLevel         *string          `json:"nextLevel" example:"Silver"`
	PointsToNextLevel int64            `json:"pointsToNextLevel" example:"750"`
	Transactions      []TransactionDTO `json:"transactions"`
	RedeemableRewards []RewardItemDTO  `json:"redeemableRewards"`
	RedemptionHistory []RedemptionDTO  `json:"redemptionHistory"`
	TierBenefits      []string         `json:"tierBenefits"`
	IsSynthetic       bool             `json:"isSynthetic" example:"false"`
}

type ClaimRequestDTO struct {
	RewardID int `json:"rewardId" example:"1"`
}

type ClaimResponseDTO struct {
	Success      bool   `json:"success" example:"true"`
	Message      string `json:"message" example:"Redeemed: Free Protein Sample"`
	RedemptionID int64  `json:"redemptionId" example:"7"`
}

type TransactionPageDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"nextCursor,omitempty"`
}

type ReconcileResponseDTO struct {
	Cached   int64 `json:"cached" example:"250"`
	Computed int64 `json:"computed" example:"250"`
	InSync   bool  `json:"inSync" example:"true"`
}

func NewTransactionDTOs(txs []domain.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionDTO{
			ID:          tx.ID,
			PointsDelta: tx.PointsDelta,
			Description: tx.Description,
			Source:      string(tx.Source),
			CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func NewRewardsViewDTO(view *domain.RewardsView) RewardsViewDTO {
	resp := RewardsViewDTO{
		Points:            view.Points,
		Tier:              view.Tier.Name,
		Level:             view.Level,
		PointsToNextLevel: view.PointsToNext,
		Transactions:      NewTransactionDTOs(view.Transactions),
		RedeemableRewards: make([]RewardItemDTO, 0, len(view.Redeemable)),
		RedemptionHistory: make([]RedemptionDTO, 0, len(view.Redemptions)),
		TierBenefits:      view.Tier.Benefits,
		IsSynthetic:       view.IsSynthetic,
	}
	if view.NextTier != nil {
		name := view.NextTier.Name
		resp.NextLevel = &name
	}
	if resp.TierBenefits == nil {
		resp.TierBenefits = []string{}
	}
	for _, item := range view.Redeemable {
		resp.RedeemableRewards = append(resp.RedeemableRewards, RewardItemDTO{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			PointsCost:  item.PointsCost,
		})
	}
	for _, rd := range view.Redemptions {
		resp.RedemptionHistory = append(resp.RedemptionHistory, RedemptionDTO{
			ID:         rd.ID,
			RewardID:   rd.RewardItemID,
			RewardName: rd.RewardName,
			PointsCost: rd.PointsCost,
			Status:     string(rd.Status),
			CreatedAt:  rd.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
