package domain

// RewardsView is the aggregated read model behind GET /rewards.
type RewardsView struct {
	AccountID    int
	Points       int64
	Tier         Tier
	Level        int
	NextTier     *Tier
	PointsToNext int64
	Transactions []Transaction
	Redeemable   []RewardItem
	Redemptions  []Redemption
	IsSynthetic  bool
}
