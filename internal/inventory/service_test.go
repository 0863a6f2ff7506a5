package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	balances map[int64]Balance
	cards    []StockCardEntry
	nextID   int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{balances: make(map[int64]Balance)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) GetStockCard(ctx context.Context, filter StockCardFilter) ([]StockCardEntry, error) {
	result := make([]StockCardEntry, len(r.cards))
	copy(result, r.cards)
	return result, nil
}

func (r *memoryRepo) GetBalance(ctx context.Context, productID int64) (Balance, error) {
	if bal, ok := r.balances[productID]; ok {
		return bal, nil
	}
	return Balance{ProductID: productID}, ErrBalanceNotFound
}

func (r *memoryRepo) ListBalances(ctx context.Context) ([]Balance, error) {
	out := make([]Balance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, b)
	}
	return out, nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, _ Movement) (int64, error) {
	tx.repo.nextID++
	return tx.repo.nextID, nil
}

func (tx *memoryTx) GetBalanceForUpdate(ctx context.Context, productID int64) (Balance, error) {
	if bal, ok := tx.repo.balances[productID]; ok {
		return bal, nil
	}
	return Balance{ProductID: productID}, ErrBalanceNotFound
}

func (tx *memoryTx) UpsertBalance(ctx context.Context, balance Balance) error {
	tx.repo.balances[balance.ProductID] = balance
	return nil
}

func (tx *memoryTx) InsertCardEntry(ctx context.Context, card StockCardEntry, productID, movementID int64) error {
	tx.repo.cards = append(tx.repo.cards, card)
	return nil
}

func TestAverageMovingCost(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	entry, err := svc.PostInbound(ctx, InboundInput{ProductID: 1, Qty: 10, UnitCost: 150, Note: "delivery#1"})
	require.NoError(t, err)
	require.InDelta(t, 10.0, entry.BalanceQty, 0.0001)
	require.InDelta(t, 150.0, entry.BalanceCost, 0.01)

	entry, err = svc.PostInbound(ctx, InboundInput{ProductID: 1, Qty: 5, UnitCost: 180, Note: "delivery#2"})
	require.NoError(t, err)
	require.InDelta(t, 15.0, entry.BalanceQty, 0.0001)
	require.InDelta(t, 160.0, entry.BalanceCost, 0.1)

	entry, err = svc.PostOutbound(ctx, OutboundInput{ProductID: 1, Qty: 8, Note: "sale"})
	require.NoError(t, err)
	require.InDelta(t, 7.0, entry.BalanceQty, 0.0001)
	require.InDelta(t, 160.0, entry.UnitCost, 0.1)
	require.InDelta(t, 160.0, entry.BalanceCost, 0.1)
}

func TestOutboundDrainsToZero(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.PostInbound(ctx, InboundInput{ProductID: 2, Qty: 4, UnitCost: 90, Note: "delivery"})
	require.NoError(t, err)

	entry, err := svc.PostOutbound(ctx, OutboundInput{ProductID: 2, Qty: 4, Note: "sale"})
	require.NoError(t, err)
	require.InDelta(t, 0.0, entry.BalanceQty, 0.0001)
	require.InDelta(t, 0.0, entry.BalanceCost, 0.0001)
}

func TestNegativeStockGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.PostOutbound(ctx, OutboundInput{ProductID: 1, Qty: 1, Note: "nothing in stock"})
	require.ErrorIs(t, err, ErrNegativeStock)

	_, err = svc.PostAdjustment(ctx, AdjustmentInput{ProductID: 1, Qty: -1, Note: "negative"})
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestNegativeStockAllowed(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{AllowNegativeStock: true})
	ctx := context.Background()

	entry, err := svc.PostOutbound(ctx, OutboundInput{ProductID: 3, Qty: 2, Note: "oversell"})
	require.NoError(t, err)
	require.InDelta(t, -2.0, entry.BalanceQty, 0.0001)
}

func TestInvalidInputs(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.PostInbound(ctx, InboundInput{ProductID: 1, Qty: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.PostInbound(ctx, InboundInput{ProductID: 1, Qty: 1, UnitCost: -5})
	require.ErrorIs(t, err, ErrInvalidUnitCost)

	_, err = svc.PostInbound(ctx, InboundInput{Qty: 1})
	require.Error(t, err)
}
