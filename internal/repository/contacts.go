package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/octobees/cardcrm/internal/entity"
)

// ErrContactNotFound is returned when no contact carries the requested id.
var ErrContactNotFound = errors.New("contact not found")

// DefaultStorageKey is the KV key holding the serialized collection.
const DefaultStorageKey = "contacts_v3"

// Observer is notified with a snapshot of the collection after every mutation.
type Observer interface {
	ContactsChanged(ctx context.Context, contacts []entity.Contact) error
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, contacts []entity.Contact) error

// ContactsChanged calls f.
func (f ObserverFunc) ContactsChanged(ctx context.Context, contacts []entity.Contact) error {
	return f(ctx, contacts)
}

// ContactStore owns the in-memory contact collection, newest first.
// Mutations are applied in memory even when an observer fails; the observer
// error is returned to the caller.
type ContactStore struct {
	mu        sync.RWMutex
	contacts  []entity.Contact
	observers []Observer
	logger    *zap.Logger
}

// NewContactStore returns an empty store.
func NewContactStore(logger *zap.Logger, observers ...Observer) *ContactStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactStore{logger: logger, observers: observers}
}

// Observe registers an additional observer.
func (s *ContactStore) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Load replaces the collection with the document stored under key.
// A missing or unreadable document yields an empty collection.
func (s *ContactStore) Load(ctx context.Context, kv KVStore, key string) error {
	raw, err := kv.Get(ctx, key)
	var contacts []entity.Contact
	switch {
	case errors.Is(err, ErrKeyNotFound):
		s.logger.Info("no stored contacts, starting empty", zap.String("key", key))
	case err != nil:
		return fmt.Errorf("load contacts: %w", err)
	default:
		if err := json.Unmarshal(raw, &contacts); err != nil {
			s.logger.Warn("stored contacts unreadable, starting empty", zap.String("key", key), zap.Error(err))
			contacts = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = contacts
	return nil
}

// All returns a copy of the collection.
func (s *ContactStore) All() []entity.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Get returns the contact with the given id.
func (s *ContactStore) Get(id string) (entity.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.contacts[i], nil
	}
	return entity.Contact{}, ErrContactNotFound
}

// Upsert replaces the contact with the same id in place or prepends a new one.
func (s *ContactStore) Upsert(ctx context.Context, c entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(c.ID); i >= 0 {
		s.contacts[i] = c
	} else {
		s.contacts = append([]entity.Contact{c}, s.contacts...)
	}
	return s.notify(ctx)
}

// Update applies fn to the stored contact with the given id under the write
// lock and returns the result. A missing id yields ErrContactNotFound and
// leaves the collection untouched. The id itself cannot be changed by fn.
func (s *ContactStore) Update(ctx context.Context, id string, fn func(*entity.Contact)) (entity.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return entity.Contact{}, ErrContactNotFound
	}
	c := s.contacts[i]
	fn(&c)
	c.ID = s.contacts[i].ID
	s.contacts[i] = c
	return c, s.notify(ctx)
}

// ReplaceAll swaps the whole collection.
func (s *ContactStore) ReplaceAll(ctx context.Context, contacts []entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append([]entity.Contact(nil), contacts...)
	return s.notify(ctx)
}

// Delete removes the contact with the given id.
func (s *ContactStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return ErrContactNotFound
	}
	s.contacts = append(s.contacts[:i:i], s.contacts[i+1:]...)
	return s.notify(ctx)
}

func (s *ContactStore) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ContactStore) snapshot() []entity.Contact {
	out := make([]entity.Contact, len(s.contacts))
	copy(out, s.contacts)
	return out
}

// notify runs with the write lock held so every observer sees a consistent snapshot.
func (s *ContactStore) notify(ctx context.Context) error {
	if len(s.observers) == 0 {
		return nil
	}
	snap := s.snapshot()
	var errs []error
	for _, o := range s.observers {
		if err := o.ContactsChanged(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PersistObserver writes the whole collection to a KV store under a fixed key.
type PersistObserver struct {
	kv     KVStore
	key    string
	logger *zap.Logger
}

// NewPersistObserver wires persistence of the collection into kv.
func NewPersistObserver(kv KVStore, key string, logger *zap.Logger) *PersistObserver {
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersistObserver{kv: kv, key: key, logger: logger}
}

// ContactsChanged serializes contacts and stores them.
func (p *PersistObserver) ContactsChanged(ctx context.Context, contacts []entity.Contact) error {
	if contacts == nil {
		contacts = []entity.Contact{}
	}
	payload, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("encode contacts: %w", err)
	}
	if err := p.kv.Put(ctx, p.key, payload); err != nil {
		p.logger.Error("persist contacts failed", zap.String("key", p.key), zap.Error(err))
		return fmt.Errorf("persist contacts: %w", err)
	}
	return nil
}

var _ Observer = (*PersistObserver)(nil)
