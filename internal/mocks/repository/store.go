// Package repository provides in-memory implementations of the repository contracts for tests.
// A Store holds all tables; TransactionManager restores a snapshot when the callback fails.
package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"coderr/internal/domain/entity"
	"coderr/internal/domain/repository"
)

// Store is an in-memory database shared by the fake repositories.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	users   map[int64]*entity.User
	offers  map[int64]*entity.Offer
	orders  map[int64]*entity.Order
	reviews map[int64]*entity.Review

	nextUserID   int64
	nextOfferID  int64
	nextDetailID int64
	nextOrderID  int64
	nextReviewID int64

	clock    time.Time
	failures map[string]error
}

// NewStore creates an empty store. Its clock starts at a fixed instant and advances one second per write.
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]*entity.User),
		offers:   make(map[int64]*entity.Offer),
		orders:   make(map[int64]*entity.Order),
		reviews:  make(map[int64]*entity.Review),
		clock:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		failures: make(map[string]error),
	}
}

// FailNext makes the next call of op (for example "OfferRepository.Create") return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[op] = err
}

// TxManager returns a transaction manager over the store.
func (s *Store) TxManager() *TransactionManager {
	return &TransactionManager{store: s}
}

// Factory returns repositories bound to the store without a transaction.
func (s *Store) Factory() repository.RepositoryFactory {
	return &factory{store: s}
}

// OfferCount returns the number of stored offers.
func (s *Store) OfferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.offers)
}

// DetailCount returns the number of stored offer tiers.
func (s *Store) DetailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, o := range s.offers {
		n += len(o.Details)
	}

	return n
}

func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)

	return s.clock
}

func (s *Store) takeFailure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)

	return err
}

type snapshot struct {
	users   map[int64]*entity.User
	offers  map[int64]*entity.Offer
	orders  map[int64]*entity.Order
	reviews map[int64]*entity.Review

	nextUserID, nextOfferID, nextDetailID, nextOrderID, nextReviewID int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		users:        make(map[int64]*entity.User, len(s.users)),
		offers:       make(map[int64]*entity.Offer, len(s.offers)),
		orders:       make(map[int64]*entity.Order, len(s.orders)),
		reviews:      make(map[int64]*entity.Review, len(s.reviews)),
		nextUserID:   s.nextUserID,
		nextOfferID:  s.nextOfferID,
		nextDetailID: s.nextDetailID,
		nextOrderID:  s.nextOrderID,
		nextReviewID: s.nextReviewID,
	}
	for id, u := range s.users {
		snap.users[id] = cloneUser(u)
	}
	for id, o := range s.offers {
		snap.offers[id] = cloneOffer(o)
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for id, r := range s.reviews {
		snap.reviews[id] = cloneReview(r)
	}

	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.offers = snap.offers
	s.orders = snap.orders
	s.reviews = snap.reviews
	s.nextUserID = snap.nextUserID
	s.nextOfferID = snap.nextOfferID
	s.nextDetailID = snap.nextDetailID
	s.nextOrderID = snap.nextOrderID
	s.nextReviewID = snap.nextReviewID
}

// TransactionManager runs callbacks against the store and rolls back on error.
type TransactionManager struct {
	store *Store
}

// Execute serializes transactions; a failing callback leaves the store as it was.
func (m *TransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()
	if err := fn(&factory{store: m.store}); err != nil {
		m.store.restore(snap)

		return err
	}

	return nil
}

type factory struct {
	store *Store
}

func (f *factory) NewUserRepository() repository.UserRepository {
	return &userRepository{store: f.store}
}

func (f *factory) NewOfferRepository() repository.OfferRepository {
	return &offerRepository{store: f.store}
}

func (f *factory) NewOrderRepository() repository.OrderRepository {
	return &orderRepository{store: f.store}
}

func (f *factory) NewReviewRepository() repository.ReviewRepository {
	return &reviewRepository{store: f.store}
}

func applyPage[T any](items []T, page repository.PageRequest) []T {
	if page.IsUnpaged() {
		return items
	}
	if page.Offset >= len(items) {
		return []T{}
	}
	end := min(page.Offset+page.Limit, len(items))

	return items[page.Offset:end]
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Profile != nil {
		p := *u.Profile
		p.File = cloneStringPtr(u.Profile.File)
		p.Location = cloneStringPtr(u.Profile.Location)
		p.Tel = cloneStringPtr(u.Profile.Tel)
		p.Description = cloneStringPtr(u.Profile.Description)
		p.WorkingHours = cloneStringPtr(u.Profile.WorkingHours)
		if u.Profile.UploadedAt != nil {
			at := *u.Profile.UploadedAt
			p.UploadedAt = &at
		}
		c.Profile = &p
	}

	return &c
}

func cloneDetail(d *entity.OfferDetail) *entity.OfferDetail {
	c := *d
	c.Features = slices.Clone(d.Features)
	c.Offer = nil

	return &c
}

func cloneOffer(o *entity.Offer) *entity.Offer {
	c := *o
	c.Image = cloneStringPtr(o.Image)
	c.Owner = nil
	c.Details = make([]*entity.OfferDetail, len(o.Details))
	for i, d := range o.Details {
		c.Details[i] = cloneDetail(d)
	}

	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Detail = nil

	return &c
}

func cloneReview(r *entity.Review) *entity.Review {
	c := *r

	return &c
}
