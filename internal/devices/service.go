package devices

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/suncore-erp/suncore/internal/shared"
)

// Store abstracts persistence for the service.
type Store interface {
	Get(ctx context.Context, id int64) (*Device, error)
	GetBySerial(ctx context.Context, serial string) (*Device, error)
	List(ctx context.Context, state *State, limit, offset int) ([]Device, error)
	Register(ctx context.Context, serial string, productID int64) (*Device, error)
	SetState(ctx context.Context, id int64, state State) error
	InsertToken(ctx context.Context, t Token) (*Token, error)
	GetToken(ctx context.Context, id int64) (*Token, error)
	ListTokens(ctx context.Context, deviceID int64) ([]Token, error)
	RevokeToken(ctx context.Context, id int64) error
	RevokeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates device registry and token issuance.
type Service struct {
	store  Store
	tokens *TokenGenerator
	audit  AuditPort
}

// NewService builds Service.
func NewService(store Store, tokens *TokenGenerator, audit AuditPort) *Service {
	return &Service{store: store, tokens: tokens, audit: audit}
}

// Register adds a device to the registry.
func (s *Service) Register(ctx context.Context, serial string, productID int64) (*Device, error) {
	if serial == "" || productID == 0 {
		return nil, fmt.Errorf("devices: serial and product required")
	}
	return s.store.Register(ctx, serial, productID)
}

// Get returns a device by id.
func (s *Service) Get(ctx context.Context, id int64) (*Device, error) {
	return s.store.Get(ctx, id)
}

// List returns devices, optionally filtered by state.
func (s *Service) List(ctx context.Context, state *State, limit, offset int) ([]Device, error) {
	return s.store.List(ctx, state, limit, offset)
}

// EnsureAvailable verifies every serial exists and is AVAILABLE.
// Sale draft device selection validates through this.
func (s *Service) EnsureAvailable(ctx context.Context, serials []string) error {
	for _, serial := range serials {
		d, err := s.store.GetBySerial(ctx, serial)
		if err != nil {
			return fmt.Errorf("%w: %s", err, serial)
		}
		if d.State != StateAvailable {
			return fmt.Errorf("%w: %s", ErrNotAvailable, serial)
		}
	}
	return nil
}

// Lock transitions an assigned device to LOCKED.
func (s *Service) Lock(ctx context.Context, id int64, actorID int64) error {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.State != StateAssigned {
		return fmt.Errorf("%w: only assigned devices can be locked", ErrNotAvailable)
	}
	if err := s.store.SetState(ctx, id, StateLocked); err != nil {
		return err
	}
	s.record(ctx, actorID, "devices:lock", d.Serial, nil)
	return nil
}

// Unlock transitions a locked device back to ASSIGNED.
func (s *Service) Unlock(ctx context.Context, id int64, actorID int64) error {
	d, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if d.State != StateLocked {
		return fmt.Errorf("%w: device is not locked", ErrNotAvailable)
	}
	if err := s.store.SetState(ctx, id, StateAssigned); err != nil {
		return err
	}
	s.record(ctx, actorID, "devices:unlock", d.Serial, nil)
	return nil
}

// IssueToken derives and stores an unlock code for a device.
func (s *Service) IssueToken(ctx context.Context, deviceID int64, validity time.Duration, actorID int64) (*Token, error) {
	if validity <= 0 {
		return nil, ErrInvalidWindow
	}
	d, err := s.store.Get(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	from := time.Now().UTC().Truncate(time.Hour)
	token := Token{
		DeviceID:   d.ID,
		Code:       s.tokens.Code(d.Serial, from, validity),
		ValidFrom:  from,
		ValidUntil: from.Add(validity),
		IssuedBy:   actorID,
	}
	issued, err := s.store.InsertToken(ctx, token)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "devices:token_issue", d.Serial, map[string]any{
		"token_id":    issued.ID,
		"valid_until": issued.ValidUntil,
	})
	return issued, nil
}

// ListTokens returns tokens for a device.
func (s *Service) ListTokens(ctx context.Context, deviceID int64) ([]Token, error) {
	return s.store.ListTokens(ctx, deviceID)
}

// RevokeToken marks a token revoked.
func (s *Service) RevokeToken(ctx context.Context, tokenID int64, actorID int64) error {
	if err := s.store.RevokeToken(ctx, tokenID); err != nil {
		return err
	}
	s.record(ctx, actorID, "devices:token_revoke", strconv.FormatInt(tokenID, 10), nil)
	return nil
}

// SweepExpired revokes tokens past their validity window. A grace duration
// keeps recently expired tokens usable a little longer.
func (s *Service) SweepExpired(ctx context.Context, grace time.Duration) (int64, error) {
	return s.store.RevokeExpired(ctx, time.Now().UTC().Add(-grace))
}

func (s *Service) record(ctx context.Context, actorID int64, action, entityID string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Module:   "devices",
		Action:   action,
		EntityID: entityID,
		Detail:   detail,
	})
}
