package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"minimercado/backend/internal/catalog"
	"minimercado/backend/internal/domain"
	"minimercado/backend/internal/ledger"
	"minimercado/backend/internal/metrics"
	"minimercado/backend/internal/party"
	"minimercado/backend/internal/report"
	"minimercado/backend/internal/store"
)

type actorContextKey struct{}

// WithActor attaches the authenticated user to ctx. Commits record the
// actor as operator; without one the session user is used.
func WithActor(ctx context.Context, actor domain.User) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.User, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.User)
	return actor, ok
}

type Options struct {
	Credentials []Credential
	StrictStock bool
	Location    *time.Location
	Clock       func() time.Time
	Logger      zerolog.Logger
	Metrics     *metrics.Recorder
	Receipt     report.Header
}

// Service is the single command and query surface over the shop state. It
// owns the in-memory collections and writes every change through to the
// repository before the next caller can read it.
type Service struct {
	mu sync.RWMutex

	repo    store.Repository
	log     zerolog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
	loc     *time.Location
	header  report.Header

	credentials map[string]Credential
	session     domain.Session

	catalog       *catalog.Catalog
	customers     *party.Registry[domain.Customer]
	suppliers     *party.Registry[domain.Supplier]
	sales         *ledger.Journal[domain.Sale]
	purchases     *ledger.Journal[domain.Purchase]
	cashMovements *ledger.Journal[domain.CashMovement]

	saleProcessor     *ledger.SaleProcessor
	purchaseProcessor *ledger.PurchaseProcessor
	drawer            *ledger.Drawer
}

// New loads every collection from repo. Collections that have never been
// stored start from the seed data and are written back immediately.
func New(ctx context.Context, repo store.Repository, opts Options) (*Service, error) {
	if repo == nil {
		return nil, errors.New("service: repository is required")
	}
	now := opts.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	header := opts.Receipt
	if header.Location == nil {
		header.Location = loc
	}

	s := &Service{
		repo:          repo,
		log:           opts.Logger.With().Str("component", "service").Logger(),
		metrics:       opts.Metrics,
		now:           now,
		loc:           loc,
		header:        header,
		credentials:   make(map[string]Credential, len(opts.Credentials)),
		catalog:       catalog.New(),
		customers:     party.NewCustomers(now),
		suppliers:     party.NewSuppliers(now),
		sales:         ledger.NewJournal[domain.Sale](),
		purchases:     ledger.NewJournal[domain.Purchase](),
		cashMovements: ledger.NewJournal[domain.CashMovement](),
	}
	for _, cred := range opts.Credentials {
		s.credentials[normalizeEmail(cred.Email)] = cred
	}

	ledgerOpts := ledger.Options{StrictStock: opts.StrictStock, Now: now}
	s.saleProcessor = ledger.NewSaleProcessor(s.catalog, s.sales, ledgerOpts)
	s.purchaseProcessor = ledger.NewPurchaseProcessor(s.catalog, s.purchases, ledgerOpts)
	s.drawer = ledger.NewDrawer(s.cashMovements, ledgerOpts)

	seeded, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(seeded) > 0 {
		s.log.Info().Strs("collections", collectionNames(seeded)).Msg("initialized empty collections from seed data")
		s.persist(ctx, seeded...)
	}

	return s, nil
}

func (s *Service) load(ctx context.Context) ([]store.Collection, error) {
	var seeded []store.Collection

	products, found, err := loadCollection[[]domain.Product](ctx, s.repo, store.Products)
	if err != nil {
		return nil, err
	}
	if !found {
		products = seedProducts()
		seeded = append(seeded, store.Products)
	}
	s.catalog.Replace(products)

	customers, found, err := loadCollection[[]domain.Customer](ctx, s.repo, store.Customers)
	if err != nil {
		return nil, err
	}
	if !found {
		seeded = append(seeded, store.Customers)
	}
	s.customers.Replace(customers)

	suppliers, found, err := loadCollection[[]domain.Supplier](ctx, s.repo, store.Suppliers)
	if err != nil {
		return nil, err
	}
	if !found {
		seeded = append(seeded, store.Suppliers)
	}
	s.suppliers.Replace(suppliers)

	sales, found, err := loadCollection[[]domain.Sale](ctx, s.repo, store.Sales)
	if err != nil {
		return nil, err
	}
	if !found {
		seeded = append(seeded, store.Sales)
	}
	s.sales.Replace(sales)

	purchases, found, err := loadCollection[[]domain.Purchase](ctx, s.repo, store.Purchases)
	if err != nil {
		return nil, err
	}
	if !found {
		seeded = append(seeded, store.Purchases)
	}
	s.purchases.Replace(purchases)

	movements, found, err := loadCollection[[]domain.CashMovement](ctx, s.repo, store.CashMovements)
	if err != nil {
		return nil, err
	}
	if !found {
		seeded = append(seeded, store.CashMovements)
	}
	s.cashMovements.Replace(movements)

	session, found, err := loadCollection[domain.Session](ctx, s.repo, store.Session)
	if err != nil {
		return nil, err
	}
	if !found {
		seeded = append(seeded, store.Session)
	}
	s.session = session

	return seeded, nil
}

func loadCollection[T any](ctx context.Context, repo store.Repository, name store.Collection) (T, bool, error) {
	var out T
	payload, err := repo.Load(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("load %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, false, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, true, nil
}

// persist writes the named collections as one batch. Failures are logged and
// counted; in-memory state is kept and the next successful write of the same
// collection brings storage back in line.
func (s *Service) persist(ctx context.Context, names ...store.Collection) {
	batch := make(map[store.Collection][]byte, len(names))
	for _, name := range names {
		payload, err := s.encode(name)
		if err != nil {
			s.log.Error().Err(err).Str("collection", string(name)).Msg("encode collection")
			s.metrics.PersistenceFailed(string(name))
			return
		}
		batch[name] = payload
	}

	if err := s.repo.Replace(ctx, batch); err != nil {
		s.log.Error().Err(err).Strs("collections", collectionNames(names)).Msg("persist collections")
		for _, name := range names {
			s.metrics.PersistenceFailed(string(name))
		}
	}
}

func (s *Service) encode(name store.Collection) ([]byte, error) {
	switch name {
	case store.Products:
		return json.Marshal(s.catalog.Snapshot())
	case store.Customers:
		return json.Marshal(s.customers.List())
	case store.Suppliers:
		return json.Marshal(s.suppliers.List())
	case store.Sales:
		return json.Marshal(s.sales.All())
	case store.Purchases:
		return json.Marshal(s.purchases.All())
	case store.CashMovements:
		return json.Marshal(s.cashMovements.All())
	case store.Session:
		return json.Marshal(s.session)
	}
	return nil, fmt.Errorf("unknown collection %q", name)
}

// Close flushes every collection. The repository itself is closed by its owner.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[store.Collection][]byte)
	for _, name := range store.Collections() {
		payload, err := s.encode(name)
		if err != nil {
			return err
		}
		batch[name] = payload
	}
	if err := s.repo.Replace(ctx, batch); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	s.log.Info().Msg("state flushed")
	return nil
}

// operator resolves who is performing a command: the request actor when one
// is attached, otherwise the logged-in session user.
func (s *Service) operator(ctx context.Context) (domain.User, bool) {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor, true
	}
	if s.session.User != nil {
		return *s.session.User, true
	}
	return domain.User{}, false
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Today is the current time in the store's location.
func (s *Service) Today() time.Time {
	return s.now().In(s.loc)
}

func collectionNames(names []store.Collection) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, string(name))
	}
	return out
}
