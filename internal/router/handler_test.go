package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/backend"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
	"github.com/gimenezlucas594-sudo/stocking-app/pkg/pos"
)

// memStore keeps sessions as JSON blobs, same shape the Redis store persists.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (s *memStore) Save(_ context.Context, reg *pos.Register) error {
	raw, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[reg.ID] = raw
	return nil
}

func (s *memStore) Load(_ context.Context, id string) (*pos.Register, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.blobs[id]
	if !ok {
		return nil, pos.ErrSessionNotFound
	}
	var reg pos.Register
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, id)
	return nil
}

func (s *memStore) Ping(context.Context) error { return nil }

// stubBackend answers commits from an in-memory catalog, decrementing stock
// the way the real service does.
type stubBackend struct {
	mu          sync.Mutex
	catalog     models.Catalog
	commitErr   error
	commitCalls int
	lastCommit  struct {
		cart   models.Cart
		tender models.TenderSplit
	}
}

func (b *stubBackend) FetchCatalog(context.Context, string) (models.Catalog, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(models.Catalog, len(b.catalog))
	copy(out, b.catalog)
	return out, nil
}

func (b *stubBackend) CommitSale(_ context.Context, _ string, cart models.Cart, tender models.TenderSplit) (*models.Sale, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commitCalls++
	b.lastCommit.cart = cart
	b.lastCommit.tender = tender
	if b.commitErr != nil {
		return nil, b.commitErr
	}

	sale := &models.Sale{ID: int64(b.commitCalls), Tender: tender, CreatedAt: time.Now()}
	for _, line := range cart.Lines {
		for i := range b.catalog {
			if b.catalog[i].ID != line.ProductID {
				continue
			}
			sub := b.catalog[i].PriceFor(line.Quantity)
			sale.Items = append(sale.Items, models.SaleItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: b.catalog[i].UnitPrice,
				Subtotal:  sub.Round(2),
			})
			sale.Total = sale.Total.Add(sub)
			b.catalog[i].Stock = b.catalog[i].Stock.Sub(line.Quantity)
		}
	}
	sale.Total = sale.Total.Round(2)
	return sale, nil
}

func (b *stubBackend) ListSales(context.Context, string) ([]models.Sale, error) {
	return []models.Sale{}, nil
}

func seedCatalog() models.Catalog {
	return models.Catalog{
		{ID: 1, Name: "Coca Cola 1.5L", Barcode: "7790895000997", PricingMode: models.PricingUnit,
			UnitPrice: decimal.RequireFromString("10.00"), Stock: decimal.RequireFromString("20"), Category: "Bebidas"},
		{ID: 2, Name: "Queso Cremoso", PricingMode: models.PricingWeight,
			UnitPrice: decimal.RequireFromString("20.00"), Stock: decimal.RequireFromString("5000"), Category: "Fiambres"},
	}
}

func setupRouter(t *testing.T, be pos.BackendClient) *gin.Engine {
	t.Helper()
	t.Setenv("ENV", "production")
	manager := pos.NewManager(newMemStore(), be, nil)
	InitEngine()
	InitializeRoutes(NewHandler(manager))
	return Router
}

// JSON mirrors of the response envelope and register view.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type lineJSON struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type tenderJSON struct {
	Mode   string  `json:"mode"`
	Cash   float64 `json:"cash_amount"`
	Card   float64 `json:"card_amount"`
	Wallet float64 `json:"wallet_amount"`
}

type registerJSON struct {
	ID        string     `json:"id"`
	State     string     `json:"state"`
	Lines     []lineJSON `json:"lines"`
	Total     float64    `json:"total"`
	Tender    tenderJSON `json:"tender"`
	Balanced  bool       `json:"balanced"`
	CanSubmit bool       `json:"can_submit"`
	LastError string     `json:"last_error"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer test-token")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w, env
}

// register pulls the "register" field out of a data payload that wraps it.
func register(t *testing.T, data json.RawMessage) registerJSON {
	t.Helper()
	var wrapper struct {
		Register registerJSON `json:"register"`
	}
	require.NoError(t, json.Unmarshal(data, &wrapper))
	if wrapper.Register.ID != "" {
		return wrapper.Register
	}
	// Cart/tender endpoints return the view directly.
	var view registerJSON
	require.NoError(t, json.Unmarshal(data, &view))
	return view
}

func openRegister(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/register/", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := register(t, env.Data)
	require.NotEmpty(t, reg.ID)
	return reg.ID
}

func TestMissingBearerTokenRejected(t *testing.T) {
	r := setupRouter(t, &stubBackend{catalog: seedCatalog()})

	req := httptest.NewRequest(http.MethodPost, "/api/register/", strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestFullSaleFlow(t *testing.T) {
	be := &stubBackend{catalog: seedCatalog()}
	r := setupRouter(t, be)
	id := openRegister(t, r)

	// Barcode scan lands one unit.
	w, env := do(t, r, http.MethodPost, "/api/register/"+id+"/scan", `{"term":"7790895000997"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var scan struct {
		Matched     bool         `json:"matched"`
		ClearSearch bool         `json:"clear_search"`
		Register    registerJSON `json:"register"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &scan))
	assert.True(t, scan.Matched)
	assert.True(t, scan.ClearSearch)
	require.Len(t, scan.Register.Lines, 1)
	assert.Equal(t, float64(1), scan.Register.Lines[0].Quantity)

	// Bump to three units, add 250g of cheese: 30.00 + 5.00.
	w, _ = do(t, r, http.MethodPut, "/api/register/"+id+"/lines/1", `{"quantity":"3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/register/"+id+"/lines", `{"product_id":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, env = do(t, r, http.MethodPut, "/api/register/"+id+"/lines/2", `{"quantity":"250"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reg := register(t, env.Data)
	assert.Equal(t, float64(35), reg.Total)

	// Mixed tender starts half and half.
	w, env = do(t, r, http.MethodPut, "/api/register/"+id+"/tender", `{"mode":"mixed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	reg = register(t, env.Data)
	assert.Equal(t, "awaiting_tender", reg.State)
	assert.Equal(t, 17.5, reg.Tender.Cash)
	assert.Equal(t, 17.5, reg.Tender.Card)
	assert.True(t, reg.Balanced)

	// Operator types 20 cash: now over by 2.50 until the card side is fixed.
	w, env = do(t, r, http.MethodPut, "/api/register/"+id+"/tender/amounts", `{"kind":"cash","amount":20}`)
	require.Equal(t, http.StatusOK, w.Code)
	reg = register(t, env.Data)
	assert.False(t, reg.Balanced)
	assert.False(t, reg.CanSubmit)

	w, env = do(t, r, http.MethodPut, "/api/register/"+id+"/tender/amounts", `{"kind":"card","amount":15}`)
	require.Equal(t, http.StatusOK, w.Code)
	reg = register(t, env.Data)
	assert.True(t, reg.Balanced)
	assert.True(t, reg.CanSubmit)

	w, env = do(t, r, http.MethodPost, "/api/register/"+id+"/checkout", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Register registerJSON `json:"register"`
		Sale     *models.Sale `json:"sale"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "settled", result.Register.State)
	assert.Empty(t, result.Register.Lines)
	require.NotNil(t, result.Sale)
	assert.True(t, result.Sale.Total.Equal(decimal.RequireFromString("35")))

	require.Equal(t, 1, be.commitCalls)
	assert.Equal(t, models.TenderMixed, be.lastCommit.tender.Mode)
	assert.True(t, be.lastCommit.tender.CashAmount.Equal(decimal.RequireFromString("20")))
	assert.True(t, be.lastCommit.tender.CardAmount.Equal(decimal.RequireFromString("15")))

	// Post-commit refresh shows the decremented stock on the next read.
	w, env = do(t, r, http.MethodGet, "/api/register/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		Catalog []struct {
			ID    int64   `json:"id"`
			Stock float64 `json:"stock"`
		} `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	found := false
	for _, p := range state.Catalog {
		if p.ID == 1 {
			found = true
			assert.Equal(t, float64(17), p.Stock)
		}
	}
	assert.True(t, found, "product 1 missing from refreshed catalog")
}

func TestScanMissLeavesCartAlone(t *testing.T) {
	r := setupRouter(t, &stubBackend{catalog: seedCatalog()})
	id := openRegister(t, r)

	w, env := do(t, r, http.MethodPost, "/api/register/"+id+"/scan", `{"term":"no such thing"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var scan struct {
		Matched     bool         `json:"matched"`
		ClearSearch bool         `json:"clear_search"`
		Register    registerJSON `json:"register"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &scan))
	assert.False(t, scan.Matched)
	assert.False(t, scan.ClearSearch)
	assert.Empty(t, scan.Register.Lines)
}

func TestCheckoutEmptyCartRefusedLocally(t *testing.T) {
	be := &stubBackend{catalog: seedCatalog()}
	r := setupRouter(t, be)
	id := openRegister(t, r)

	w, env := do(t, r, http.MethodPost, "/api/register/"+id+"/checkout", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, 0, be.commitCalls)
}

func TestCheckoutStockRejectionPreservesCart(t *testing.T) {
	be := &stubBackend{catalog: seedCatalog()}
	be.commitErr = &backend.RemoteError{
		StatusCode: http.StatusBadRequest,
		Reason:     "Stock insuficiente para Coca Cola 1.5L. Disponible: 2",
	}
	r := setupRouter(t, be)
	id := openRegister(t, r)

	w, _ := do(t, r, http.MethodPost, "/api/register/"+id+"/lines", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPut, "/api/register/"+id+"/lines/1", `{"quantity":"5"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodPost, "/api/register/"+id+"/checkout", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Stock insuficiente para Coca Cola 1.5L. Disponible: 2", env.Message)

	reg := register(t, env.Data)
	assert.Equal(t, "failed", reg.State)
	require.Len(t, reg.Lines, 1)
	assert.Equal(t, float64(5), reg.Lines[0].Quantity)

	// A straight retry is allowed once the backend accepts.
	be.mu.Lock()
	be.commitErr = nil
	be.mu.Unlock()
	w, env = do(t, r, http.MethodPost, "/api/register/"+id+"/checkout", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reg = register(t, env.Data)
	assert.Equal(t, "settled", reg.State)
	assert.Empty(t, reg.LastError)
	assert.Equal(t, 2, be.commitCalls)
}

func TestUnknownSessionIs404(t *testing.T) {
	r := setupRouter(t, &stubBackend{catalog: seedCatalog()})

	w, env := do(t, r, http.MethodGet, "/api/register/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestInvalidTenderModeRejected(t *testing.T) {
	r := setupRouter(t, &stubBackend{catalog: seedCatalog()})
	id := openRegister(t, r)

	w, env := do(t, r, http.MethodPut, "/api/register/"+id+"/tender", `{"mode":"cheque"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestTenderAmountOutsideMixedRejected(t *testing.T) {
	r := setupRouter(t, &stubBackend{catalog: seedCatalog()})
	id := openRegister(t, r)

	w, _ := do(t, r, http.MethodPost, "/api/register/"+id+"/lines", `{"product_id":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPut, "/api/register/"+id+"/tender", `{"mode":"cash"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, r, http.MethodPut, "/api/register/"+id+"/tender/amounts", `{"kind":"cash","amount":50}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Tender amounts can only be edited in mixed mode", env.Message)
}
