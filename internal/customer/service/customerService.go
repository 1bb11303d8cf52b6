package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/reloop/portal/internal/backend"
	customerrors "github.com/reloop/portal/internal/customErrors"
	"github.com/reloop/portal/internal/dto"
)

// QuickRedeemAmounts are the one-tap redemption buttons.
var QuickRedeemAmounts = []int{50, 100, 200, 300}

type CustomerService interface {
	Dashboard(ctx context.Context, token string) (*dto.DashboardResponse, error)
	Profile(ctx context.Context, token string) (*dto.ProfileResponse, error)
	RedeemOptions(ctx context.Context, token string) (*dto.RedeemOptionsResponse, error)
	Redeem(ctx context.Context, token string, req dto.RedeemRequest) (*dto.RedeemResponse, error)
	Transactions(ctx context.Context, token string) (*dto.TransactionsResponse, error)
}

type CustomerServiceImpl struct {
	api backend.API
	log *zap.Logger
}

func NewCustomerService(api backend.API, log *zap.Logger) *CustomerServiceImpl {
	return &CustomerServiceImpl{api: api, log: log}
}

func (s *CustomerServiceImpl) Dashboard(ctx context.Context, token string) (*dto.DashboardResponse, error) {
	profile, coins, err := s.profileAndCoins(ctx, token)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		ID:            string(profile.ID),
		Name:          profile.FullName,
		Email:         profile.Email,
		BagsReturned:  profile.BagsReturned,
		BagsCollected: profile.BagsCollected,
		TotalCoins:    coins,
		MaxRedeemable: MaxRedeemable(coins),
	}, nil
}

func (s *CustomerServiceImpl) Profile(ctx context.Context, token string) (*dto.ProfileResponse, error) {
	profile, coins, err := s.profileAndCoins(ctx, token)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		ID:             string(profile.ID),
		Name:           profile.FullName,
		Initials:       Initials(profile.FullName),
		Email:          profile.Email,
		BagsReturned:   profile.BagsReturned,
		BagsCollected:  profile.BagsCollected,
		CurrentBalance: coins,
	}, nil
}

func (s *CustomerServiceImpl) RedeemOptions(ctx context.Context, token string) (*dto.RedeemOptionsResponse, error) {
	coins, err := s.coins(ctx, token)
	if err != nil {
		return nil, err
	}

	quick := make([]dto.QuickAmount, 0, len(QuickRedeemAmounts))
	for _, amount := range QuickRedeemAmounts {
		quick = append(quick, dto.QuickAmount{Amount: amount, Enabled: CanRedeem(amount, coins)})
	}

	return &dto.RedeemOptionsResponse{
		AvailableCoins: coins,
		MaxRedeemable:  MaxRedeemable(coins),
		QuickAmounts:   quick,
	}, nil
}

// Redeem checks the amount against a fresh balance before submitting it.
// The backend's answer is passed through as-is.
func (s *CustomerServiceImpl) Redeem(ctx context.Context, token string, req dto.RedeemRequest) (*dto.RedeemResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, customerrors.ErrInvalidRedeemAmount
	}

	coins, err := s.coins(ctx, token)
	if err != nil {
		return nil, err
	}
	if !CanRedeem(req.Amount, coins) {
		s.log.Info("redeem refused", zap.Int("amount", req.Amount), zap.Int("balance", coins))
		return nil, customerrors.ErrInsufficientCoins
	}

	result, err := s.api.Redeem(ctx, token, req.Amount)
	if err != nil {
		s.log.Error("redeem failed", zap.Int("amount", req.Amount), zap.Error(err))
		return nil, customerrors.FromBackend(err)
	}

	message := result.Message
	if message == "" {
		message = "Redemption submitted"
	}
	s.log.Info("redeem submitted", zap.Int("amount", req.Amount))

	return &dto.RedeemResponse{
		Message:        message,
		Redeemed:       req.Amount,
		RemainingCoins: result.RemainingCoins,
		Redirect:       "/dashboard",
	}, nil
}

func (s *CustomerServiceImpl) Transactions(ctx context.Context, token string) (*dto.TransactionsResponse, error) {
	txs, err := s.api.CoinTransactions(ctx, token)
	if err != nil {
		s.log.Error("fetch transactions failed", zap.Error(err))
		return nil, customerrors.FromBackend(err)
	}

	res := &dto.TransactionsResponse{
		Earning:  txs.Earning,
		Spending: txs.Spending,
	}
	if res.Earning == nil {
		res.Earning = []backend.EarningTransaction{}
	}
	if res.Spending == nil {
		res.Spending = []backend.SpendingTransaction{}
	}
	for _, tx := range res.Earning {
		res.TotalEarned += tx.CoinsEarned
	}
	for _, tx := range res.Spending {
		res.TotalSpent += tx.CoinsSpent
	}
	res.NetBalance = max(res.TotalEarned-res.TotalSpent, 0)

	return res, nil
}

func (s *CustomerServiceImpl) profileAndCoins(ctx context.Context, token string) (*backend.UserProfile, int, error) {
	profile, err := s.api.UserProfile(ctx, token)
	if err != nil {
		s.log.Error("fetch user profile failed", zap.Error(err))
		return nil, 0, customerrors.FromBackend(err)
	}

	coins, err := s.coins(ctx, token)
	if err != nil {
		return nil, 0, err
	}
	return profile, coins, nil
}

func (s *CustomerServiceImpl) coins(ctx context.Context, token string) (int, error) {
	coins, err := s.api.CoinInfo(ctx, token)
	if err != nil {
		s.log.Error("fetch coin balance failed", zap.Error(err))
		return 0, customerrors.FromBackend(err)
	}
	return coins, nil
}

// MaxRedeemable rounds the balance down to the nearest ten.
func MaxRedeemable(balance int) int {
	if balance <= 0 {
		return 0
	}
	return balance / 10 * 10
}

// CanRedeem reports whether amount is a positive amount covered by balance.
func CanRedeem(amount, balance int) bool {
	return amount > 0 && amount <= balance
}

func Initials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(string([]rune(part)[:1])))
	}
	return b.String()
}
