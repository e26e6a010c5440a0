// Package backend is the HTTP client for the external catalog/sales service.
// The service is the source of truth for pricing and stock; this client only
// shapes requests and surfaces its answers.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gimenezlucas594-sudo/stocking-app/pkg/models"
)

// RemoteError is a rejection answered by the backend itself, as opposed to a
// transport failure. Reason is the backend's human-readable detail, verbatim.
type RemoteError struct {
	StatusCode int
	Reason     string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.StatusCode, e.Reason)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchCatalog reads the full ordered product list.
func (c *Client) FetchCatalog(ctx context.Context, token string) (models.Catalog, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/productos/", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var dtos []productDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	catalog := make(models.Catalog, len(dtos))
	for i, d := range dtos {
		catalog[i] = d.toProduct()
	}
	return catalog, nil
}

// CommitSale posts the cart and tender breakdown as a single sale. The client
// never sends prices: the backend prices each line at commit time.
func (c *Client) CommitSale(ctx context.Context, token string, cart models.Cart, tender models.TenderSplit) (*models.Sale, error) {
	body, err := json.Marshal(newCommitRequest(cart, tender))
	if err != nil {
		return nil, fmt.Errorf("encoding sale: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/ventas/", token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("committing sale: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, remoteError(resp)
	}

	var dto saleDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decoding sale: %w", err)
	}
	sale := dto.toSale()
	return &sale, nil
}

// ListSales reads the sale history for the manager review screen.
func (c *Client) ListSales(ctx context.Context, token string) ([]models.Sale, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/ventas/", token, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching sales: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var dtos []saleDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decoding sales: %w", err)
	}

	sales := make([]models.Sale, len(dtos))
	for i, d := range dtos {
		sales[i] = d.toSale()
	}
	return sales, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// remoteError extracts the backend's detail message from an error response.
func remoteError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Detail string `json:"detail"`
	}
	reason := ""
	if err := json.Unmarshal(raw, &payload); err == nil {
		reason = payload.Detail
	}
	if reason == "" {
		reason = strings.TrimSpace(string(raw))
	}
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return &RemoteError{StatusCode: resp.StatusCode, Reason: reason}
}
