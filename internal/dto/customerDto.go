package dto

import "github.com/reloop/portal/internal/backend"

type RedeemRequest struct {
	Amount int `json:"amount" validate:"gt=0"`
}

func (r *RedeemRequest) Validate() error {
	return validate.Struct(r)
}

type DashboardResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	BagsReturned  int    `json:"bags_returned"`
	BagsCollected int    `json:"bags_collected"`
	TotalCoins    int    `json:"total_coins"`
	MaxRedeemable int    `json:"max_redeemable"`
}

type ProfileResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Initials       string `json:"initials"`
	Email          string `json:"email"`
	BagsReturned   int    `json:"bags_returned"`
	BagsCollected  int    `json:"bags_collected"`
	CurrentBalance int    `json:"current_balance"`
}

type QuickAmount struct {
	Amount  int  `json:"amount"`
	Enabled bool `json:"enabled"`
}

type RedeemOptionsResponse struct {
	AvailableCoins int           `json:"available_coins"`
	MaxRedeemable  int           `json:"max_redeemable"`
	QuickAmounts   []QuickAmount `json:"quick_amounts"`
}

type RedeemResponse struct {
	Message        string `json:"message"`
	Redeemed       int    `json:"redeemed"`
	RemainingCoins *int   `json:"remaining_coins,omitempty"`
	Redirect       string `json:"redirect"`
}

type TransactionsResponse struct {
	Earning     []backend.EarningTransaction  `json:"earning_transactions"`
	Spending    []backend.SpendingTransaction `json:"spending_transactions"`
	TotalEarned int                           `json:"total_earned"`
	TotalSpent  int                           `json:"total_spent"`
	NetBalance  int                           `json:"net_balance"`
}
