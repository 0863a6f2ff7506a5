package devices

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	devices map[int64]*Device
	tokens  map[int64]*Token
	nextDev int64
	nextTok int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{devices: make(map[int64]*Device), tokens: make(map[int64]*Token)}
}

func (m *memoryStore) Get(ctx context.Context, id int64) (*Device, error) {
	if d, ok := m.devices[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memoryStore) GetBySerial(ctx context.Context, serial string) (*Device, error) {
	for _, d := range m.devices {
		if d.Serial == serial {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryStore) List(ctx context.Context, state *State, limit, offset int) ([]Device, error) {
	var out []Device
	for _, d := range m.devices {
		if state == nil || d.State == *state {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memoryStore) Register(ctx context.Context, serial string, productID int64) (*Device, error) {
	for _, d := range m.devices {
		if d.Serial == serial {
			return nil, ErrAlreadyExists
		}
	}
	m.nextDev++
	d := &Device{ID: m.nextDev, Serial: serial, ProductID: productID, State: StateAvailable}
	m.devices[d.ID] = d
	cp := *d
	return &cp, nil
}

func (m *memoryStore) SetState(ctx context.Context, id int64, state State) error {
	d, ok := m.devices[id]
	if !ok {
		return ErrNotFound
	}
	d.State = state
	return nil
}

func (m *memoryStore) InsertToken(ctx context.Context, t Token) (*Token, error) {
	m.nextTok++
	t.ID = m.nextTok
	t.CreatedAt = time.Now()
	m.tokens[t.ID] = &t
	cp := t
	return &cp, nil
}

func (m *memoryStore) GetToken(ctx context.Context, id int64) (*Token, error) {
	if t, ok := m.tokens[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *memoryStore) ListTokens(ctx context.Context, deviceID int64) ([]Token, error) {
	var out []Token
	for _, t := range m.tokens {
		if t.DeviceID == deviceID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memoryStore) RevokeToken(ctx context.Context, id int64) error {
	t, ok := m.tokens[id]
	if !ok || t.Revoked {
		return ErrNotFound
	}
	t.Revoked = true
	return nil
}

func (m *memoryStore) RevokeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for _, t := range m.tokens {
		if !t.Revoked && t.ValidUntil.Before(cutoff) {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

func newTestService(store Store) *Service {
	return NewService(store, NewTokenGenerator("test-secret"), nil)
}

func TestTokenCodeDeterministic(t *testing.T) {
	gen := NewTokenGenerator("secret")
	window := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	a := gen.Code("SN-001", window, 72*time.Hour)
	b := gen.Code("SN-001", window.Add(30*time.Minute), 72*time.Hour)
	require.Equal(t, a, b, "codes within the same hour window must match")
	require.Len(t, a, 9)

	c := gen.Code("SN-002", window, 72*time.Hour)
	require.NotEqual(t, a, c, "different serials must yield different codes")

	d := gen.Code("SN-001", window, 24*time.Hour)
	require.NotEqual(t, a, d, "different validity must yield different codes")

	require.True(t, gen.Verify("SN-001", a, window, 72*time.Hour))
	require.False(t, gen.Verify("SN-001", "000000000", window, 72*time.Hour))
}

func TestIssueAndRevokeToken(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	d, err := svc.Register(ctx, "SN-100", 7)
	require.NoError(t, err)

	token, err := svc.IssueToken(ctx, d.ID, 48*time.Hour, 1)
	require.NoError(t, err)
	require.Len(t, token.Code, 9)
	require.False(t, token.Revoked)
	require.Equal(t, 48*time.Hour, token.ValidUntil.Sub(token.ValidFrom))

	_, err = svc.IssueToken(ctx, d.ID, 0, 1)
	require.ErrorIs(t, err, ErrInvalidWindow)

	require.NoError(t, svc.RevokeToken(ctx, token.ID, 1))
	got, err := store.GetToken(ctx, token.ID)
	require.NoError(t, err)
	require.True(t, got.Revoked)
}

func TestSweepExpired(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	d, err := svc.Register(ctx, "SN-200", 3)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-72 * time.Hour)
	_, err = store.InsertToken(ctx, Token{DeviceID: d.ID, Code: "123456789", ValidFrom: past, ValidUntil: past.Add(time.Hour)})
	require.NoError(t, err)
	fresh, err := svc.IssueToken(ctx, d.ID, 24*time.Hour, 1)
	require.NoError(t, err)

	n, err := svc.SweepExpired(ctx, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := store.GetToken(ctx, fresh.ID)
	require.NoError(t, err)
	require.False(t, got.Revoked)
}

func TestEnsureAvailable(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	d, err := svc.Register(ctx, "SN-300", 2)
	require.NoError(t, err)

	require.NoError(t, svc.EnsureAvailable(ctx, []string{"SN-300"}))
	require.ErrorIs(t, svc.EnsureAvailable(ctx, []string{"SN-999"}), ErrNotFound)

	require.NoError(t, store.SetState(ctx, d.ID, StateAssigned))
	require.ErrorIs(t, svc.EnsureAvailable(ctx, []string{"SN-300"}), ErrNotAvailable)
}

func TestLockUnlockTransitions(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	ctx := context.Background()

	d, err := svc.Register(ctx, "SN-400", 1)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Lock(ctx, d.ID, 1), ErrNotAvailable)

	require.NoError(t, store.SetState(ctx, d.ID, StateAssigned))
	require.NoError(t, svc.Lock(ctx, d.ID, 1))
	require.ErrorIs(t, svc.Lock(ctx, d.ID, 1), ErrNotAvailable)

	require.NoError(t, svc.Unlock(ctx, d.ID, 1))
	got, err := store.Get(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, StateAssigned, got.State)
}
