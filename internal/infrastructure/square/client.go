package square

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	domainErrors "github.com/copperkettle/catering/internal/domain/errors"
	"github.com/copperkettle/catering/internal/infrastructure/config"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// squareVersion pins the provider API version the client is coded against.
const squareVersion = "2026-07-16"

// CatalogObject is the subset of the provider catalog object the sync
// pipeline reads.
type CatalogObject struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	IsDeleted bool   `json:"is_deleted"`
}

type listCatalogResponse struct {
	Objects []CatalogObject `json:"objects"`
	Cursor  string          `json:"cursor"`
	Errors  []apiError      `json:"errors"`
}

type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// Client talks to the Square Catalog API. Calls carry an explicit timeout
// and run behind a circuit breaker so a flapping provider fails fast
// instead of queueing work.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	breaker    *gobreaker.CircuitBreaker[*listCatalogResponse]
	log        zerolog.Logger
}

// NewClient creates a Square API client from config.
func NewClient(cfg config.SquareConfig, log zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[*listCatalogResponse](gobreaker.Settings{
		Name:        "square-catalog",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.AccessToken,
		timeout:    cfg.RequestTimeout,
		breaker:    breaker,
		log:        log,
	}
}

// ListCatalogItemIDs fetches the full set of live (non-deleted) catalog
// item ids, following cursor pagination.
func (c *Client) ListCatalogItemIDs(ctx context.Context) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		page, err := c.breaker.Execute(func() (*listCatalogResponse, error) {
			return c.listPage(ctx, cursor)
		})
		if err != nil {
			return nil, classifyProviderError(err)
		}
		for _, obj := range page.Objects {
			if obj.Type == "ITEM" && !obj.IsDeleted {
				ids = append(ids, obj.ID)
			}
		}
		if page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	c.log.Debug().Int("items", len(ids)).Msg("fetched provider catalog")
	return ids, nil
}

func (c *Client) listPage(ctx context.Context, cursor string) (*listCatalogResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + "/v2/catalog/list"
	params := url.Values{"types": {"ITEM"}}
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Square-Version", squareVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog list returned status %d", resp.StatusCode)
	}

	var page listCatalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	if len(page.Errors) > 0 {
		first := page.Errors[0]
		return nil, fmt.Errorf("catalog list error %s/%s: %s", first.Category, first.Code, first.Detail)
	}
	return &page, nil
}

// classifyProviderError maps transport failures onto the error taxonomy so
// callers can distinguish "try again" timeouts from hard provider faults.
func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domainErrors.ErrProviderTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domainErrors.ErrProviderTimeout, err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker open", domainErrors.ErrProviderUnavailable)
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrProviderUnavailable, err)
}
