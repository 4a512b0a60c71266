package registry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore is an in-memory Store used for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	byRegID  map[string]Registrant
	byNIN    map[string]string
	order    []string
	payments []Payment
	nextID   int64
	open     atomic.Int64
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byRegID: make(map[string]Registrant),
		byNIN:   make(map[string]string),
	}
}

func (s *MemoryStore) Acquire(_ context.Context) (Session, error) {
	s.open.Add(1)
	return &memorySession{store: s}, nil
}

func (s *MemoryStore) EnsureSchema(context.Context) error { return nil }
func (s *MemoryStore) Ping(context.Context) error         { return nil }
func (s *MemoryStore) Close() error                       { return nil }

// OpenSessions reports sessions acquired but not yet released.
func (s *MemoryStore) OpenSessions() int64 {
	return s.open.Load()
}

type memorySession struct {
	store    *MemoryStore
	released atomic.Bool
}

func (m *memorySession) Release() {
	if m.released.CompareAndSwap(false, true) {
		m.store.open.Add(-1)
	}
}

func (m *memorySession) Insert(_ context.Context, r Registrant) (Registrant, error) {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNIN[r.NIN]; exists {
		return Registrant{}, ErrDuplicateNationalID
	}
	if _, exists := s.byRegID[r.RegistrationID]; exists {
		return Registrant{}, errors.New("registration id exists")
	}
	s.nextID++
	r.ID = s.nextID
	s.byRegID[r.RegistrationID] = r
	s.byNIN[r.NIN] = r.RegistrationID
	s.order = append(s.order, r.RegistrationID)
	return r, nil
}

func (m *memorySession) FindByRegistrationID(_ context.Context, registrationID string) (Registrant, error) {
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byRegID[registrationID]
	if !ok {
		return Registrant{}, ErrNotFound
	}
	return r, nil
}

func (m *memorySession) SetPhotoPath(_ context.Context, registrationID, path string) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byRegID[registrationID]
	if !ok {
		return ErrNotFound
	}
	r.PhotoPath = path
	s.byRegID[registrationID] = r
	return nil
}

func (m *memorySession) ApplyPayment(_ context.Context, registrationID, kind string, amount float64) (Registrant, error) {
	if err := validKind(kind); err != nil {
		return Registrant{}, err
	}
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byRegID[registrationID]
	if !ok {
		return Registrant{}, ErrNotFound
	}
	switch kind {
	case PaymentRegistration:
		r.RegistrationFeePaid = true
		r.MembershipStatus = StatusActive
	case PaymentDailyDues:
		r.DailyDuesBalance += amount
	}
	s.byRegID[registrationID] = r
	s.payments = append(s.payments, Payment{
		ID:             int64(len(s.payments) + 1),
		RegistrationID: registrationID,
		Kind:           kind,
		Amount:         amount,
		RecordedAt:     time.Now().UTC(),
	})
	return r, nil
}

func (m *memorySession) Payments(_ context.Context, registrationID string) ([]Payment, error) {
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Payment
	for _, p := range s.payments {
		if p.RegistrationID == registrationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memorySession) List(_ context.Context) ([]Registrant, error) {
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Registrant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byRegID[id])
	}
	return out, nil
}

func (m *memorySession) Count(_ context.Context) (int, error) {
	s := m.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}
