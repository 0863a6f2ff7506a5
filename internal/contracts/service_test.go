package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	contracts map[int64]*Contract
	nextID    int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{contracts: make(map[int64]*Contract)}
}

func (m *memoryStore) Get(ctx context.Context, id int64) (*Contract, error) {
	if c, ok := m.contracts[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memoryStore) List(ctx context.Context, status *Status, limit, offset int) ([]Contract, error) {
	var out []Contract
	for _, c := range m.contracts {
		if status == nil || c.Status == *status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryStore) InsertTx(ctx context.Context, tx pgx.Tx, c Contract) (int64, error) {
	m.nextID++
	c.ID = m.nextID
	m.contracts[c.ID] = &c
	return c.ID, nil
}

func (m *memoryStore) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	c, ok := m.contracts[id]
	if !ok || c.Status != from {
		return ErrNotFound
	}
	c.Status = to
	return nil
}

func (m *memoryStore) ListOverdue(ctx context.Context, asOf time.Time) ([]Contract, error) {
	var out []Contract
	for _, c := range m.contracts {
		if c.Status == StatusActive && c.ExpectedEnd.Before(asOf) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryStore) add(c Contract) int64 {
	m.nextID++
	c.ID = m.nextID
	m.contracts[c.ID] = &c
	return c.ID
}

func TestBuildContract(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	c, err := BuildContract(CreateInput{
		SaleID: 1, CustomerID: 2, ProductID: 3,
		DurationMonths: 12, StartingPrice: 500, MonthlyAmount: 40,
	}, now)
	require.NoError(t, err)
	require.Equal(t, StatusActive, c.Status)
	require.Equal(t, now.AddDate(0, 12, 0), c.ExpectedEnd)

	_, err = BuildContract(CreateInput{DurationMonths: 0, StartingPrice: 500, MonthlyAmount: 40}, now)
	require.ErrorIs(t, err, ErrInvalidTerms)

	_, err = BuildContract(CreateInput{DurationMonths: 6, StartingPrice: 0, MonthlyAmount: 40}, now)
	require.ErrorIs(t, err, ErrInvalidTerms)
}

func TestTransitionGuards(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	id := store.add(Contract{Status: StatusActive})

	c, err := svc.Transition(ctx, id, StatusDefaulted, 1)
	require.NoError(t, err)
	require.Equal(t, StatusDefaulted, c.Status)

	c, err = svc.Transition(ctx, id, StatusActive, 1)
	require.NoError(t, err)
	require.Equal(t, StatusActive, c.Status)

	c, err = svc.Transition(ctx, id, StatusCompleted, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, c.Status)

	_, err = svc.Transition(ctx, id, StatusActive, 1)
	require.ErrorIs(t, err, ErrBadTransition, "completed is terminal")

	cancelled := store.add(Contract{Status: StatusCancelled})
	_, err = svc.Transition(ctx, cancelled, StatusActive, 1)
	require.ErrorIs(t, err, ErrBadTransition, "cancelled is terminal")
}

func TestScanOverdue(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	past := time.Now().UTC().AddDate(0, -1, 0)
	future := time.Now().UTC().AddDate(0, 6, 0)

	overdueID := store.add(Contract{Status: StatusActive, ExpectedEnd: past})
	healthyID := store.add(Contract{Status: StatusActive, ExpectedEnd: future})
	store.add(Contract{Status: StatusCompleted, ExpectedEnd: past})

	n, err := svc.ScanOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := store.Get(ctx, overdueID)
	require.NoError(t, err)
	require.Equal(t, StatusDefaulted, got.Status)

	got, err = store.Get(ctx, healthyID)
	require.NoError(t, err)
	require.Equal(t, StatusActive, got.Status)
}
