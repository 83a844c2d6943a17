package memstore

import "github.com/GlebRadaev/rewardsledger/internal/domain"

// DefaultRewards mirrors the reward_items seed migration for STORAGE=memory.
func DefaultRewards() []domain.RewardItem {
	return []domain.RewardItem{
		{ID: 1, Name: "Free Protein Sample", Description: "Single-serve sample of any protein blend", PointsCost: 100, IsActive: true},
		{ID: 2, Name: "$5 Off Next Order", Description: "Discount code applied at checkout", PointsCost: 250, IsActive: true},
		{ID: 3, Name: "Free Shipping", Description: "Free standard shipping on one order", PointsCost: 300, IsActive: true},
		{ID: 4, Name: "Shaker Bottle", Description: "Branded 700ml shaker bottle", PointsCost: 500, IsActive: true},
		{ID: 5, Name: "$25 Off Next Order", Description: "Discount code applied at checkout", PointsCost: 1000, IsActive: true},
		{ID: 6, Name: "1:1 Coaching Session", Description: "30 minute session with a wellness coach", PointsCost: 2500, IsActive: true},
		{ID: 7, Name: "Retired Tote Bag", Description: "No longer available", PointsCost: 400, IsActive: false},
	}
}
