package pos

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
)

// SessionStore persists register sessions between operator actions.
type SessionStore interface {
	Save(ctx context.Context, reg *Register) error
	Load(ctx context.Context, id string) (*Register, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// CatalogCache is an optional shared cache for catalog fetches, so opening a
// register does not always round-trip to the backend.
type CatalogCache interface {
	Put(ctx context.Context, catalog models.Catalog) error
	Get(ctx context.Context) (models.Catalog, error)
}

// BackendClient is the engine's view of the external catalog/sales service.
type BackendClient interface {
	FetchCatalog(ctx context.Context, token string) (models.Catalog, error)
	CommitSale(ctx context.Context, token string, cart models.Cart, tender models.TenderSplit) (*models.Sale, error)
	ListSales(ctx context.Context, token string) ([]models.Sale, error)
}

// Manager owns all live register sessions. It serializes actions per session
// and keeps the single-flight guard on checkout: the SUBMITTING state is
// persisted before the commit round trip, so a concurrent checkout or cart
// edit is refused until the outcome lands.
type Manager struct {
	store   SessionStore
	backend BackendClient
	cache   CatalogCache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager wires the engine. cache may be nil to disable catalog caching.
func NewManager(store SessionStore, backend BackendClient, cache CatalogCache) *Manager {
	return &Manager{
		store:   store,
		backend: backend,
		cache:   cache,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *Manager) Backend() BackendClient {
	return m.backend
}

func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Open fetches a catalog snapshot and starts a fresh register session.
func (m *Manager) Open(ctx context.Context, token string) (*Register, error) {
	catalog, err := m.catalogSnapshot(ctx, token)
	if err != nil {
		return nil, err
	}
	reg := NewRegister(catalog)
	if err := m.store.Save(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*Register, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()
	return m.store.Load(ctx, id)
}

// Update runs one operator action against a session under its lock and
// persists the result. The action's error is returned alongside the register
// so handlers can render current state even on refusal.
func (m *Manager) Update(ctx context.Context, id string, action func(*Register) error) (*Register, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	reg, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := action(reg); err != nil {
		return reg, err
	}
	reg.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, reg); err != nil {
		return reg, err
	}
	return reg, nil
}

// RefreshCatalog re-fetches the catalog from the backend and pins the new
// snapshot into the session.
func (m *Manager) RefreshCatalog(ctx context.Context, token, id string) (*Register, error) {
	catalog, err := m.backend.FetchCatalog(ctx, token)
	if err != nil {
		return nil, err
	}
	m.cachePut(ctx, catalog)
	return m.Update(ctx, id, func(r *Register) error {
		return r.RefreshCatalog(catalog)
	})
}

// Checkout commits the session's sale. The session lock is released during
// the network round trip; the persisted SUBMITTING state keeps the register
// frozen meanwhile. There is no automatic retry: a sale commit is not
// idempotent, so every retry is an explicit operator action.
func (m *Manager) Checkout(ctx context.Context, token, id string) (*Register, error) {
	l := m.lockFor(id)

	l.Lock()
	reg, err := m.store.Load(ctx, id)
	if err != nil {
		l.Unlock()
		return nil, err
	}
	if err := reg.BeginSubmit(); err != nil {
		l.Unlock()
		return reg, err
	}
	reg.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, reg); err != nil {
		l.Unlock()
		return reg, err
	}
	cart, tender := reg.Cart, reg.Tender
	l.Unlock()

	sale, submitErr := m.backend.CommitSale(ctx, token, cart, tender)

	l.Lock()
	defer l.Unlock()

	reg, err = m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if submitErr != nil {
		reg.FailSubmit(submitErr.Error())
	} else {
		catalog, catErr := m.backend.FetchCatalog(ctx, token)
		if catErr != nil {
			// The sale is committed; stale stock display is the lesser evil.
			log.Printf("Warning: catalog refresh after sale %d failed: %v", sale.ID, catErr)
			catalog = nil
		} else {
			m.cachePut(ctx, catalog)
		}
		reg.CompleteSubmit(sale, catalog)
	}
	reg.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, reg); err != nil {
		return reg, err
	}
	return reg, submitErr
}

func (m *Manager) catalogSnapshot(ctx context.Context, token string) (models.Catalog, error) {
	if m.cache != nil {
		if catalog, err := m.cache.Get(ctx); err == nil && len(catalog) > 0 {
			return catalog, nil
		}
	}
	catalog, err := m.backend.FetchCatalog(ctx, token)
	if err != nil {
		return nil, err
	}
	m.cachePut(ctx, catalog)
	return catalog, nil
}

func (m *Manager) cachePut(ctx context.Context, catalog models.Catalog) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Put(ctx, catalog); err != nil {
		log.Printf("Warning: failed to cache catalog: %v", err)
	}
}
