package services

import (
	"context"

	"github.com/wealth-horizon/BloomVest/utils"
)

// InvestmentAccumulator converts a successful payment amount into metal
// weight and credits the per-user, per-metal ledger entry. It must run at
// most once per transaction reaching SUCCESS; the reconciliation service
// guarantees that by calling it only after winning the conditional status
// update, inside the same store transaction.
type InvestmentAccumulator struct {
	Prices PriceFeed
}

// NewInvestmentAccumulator wires the accumulator to a price feed
func NewInvestmentAccumulator(prices PriceFeed) *InvestmentAccumulator {
	return &InvestmentAccumulator{Prices: prices}
}

// Accumulate credits amount (and its gram equivalent at the current price)
// to the user's holdings through the given store scope. Returns the weight
// credited.
func (a *InvestmentAccumulator) Accumulate(ctx context.Context, store Store, userID uint, metalType string, amount float64) (float64, error) {
	pricePerGram, err := a.Prices.GetCurrentPrice(ctx, metalType)
	if err != nil {
		return 0, err
	}

	weight := amount / pricePerGram
	utils.LogDebug("Accumulating investment - user: %d, metal: %s, amount: %.2f, price: %.2f, weight: %.6fg",
		userID, metalType, amount, pricePerGram, weight)

	if err := store.UpsertInvestment(ctx, userID, metalType, amount, weight); err != nil {
		return 0, err
	}
	return weight, nil
}
