package square_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainErrors "github.com/copperkettle/catering/internal/domain/errors"
	"github.com/copperkettle/catering/internal/infrastructure/config"
	"github.com/copperkettle/catering/internal/infrastructure/square"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*square.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := square.NewClient(config.SquareConfig{
		AccessToken:    "test-token",
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
	}, zerolog.Nop())
	return client, srv
}

func TestListCatalogItemIDs_SinglePage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/catalog/list", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "ITEM", r.URL.Query().Get("types"))

		json.NewEncoder(w).Encode(map[string]any{
			"objects": []map[string]any{
				{"id": "sq-1", "type": "ITEM"},
				{"id": "sq-2", "type": "ITEM"},
				{"id": "sq-del", "type": "ITEM", "is_deleted": true},
				{"id": "cat-1", "type": "CATEGORY"},
			},
		})
	}))

	ids, err := client.ListCatalogItemIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sq-1", "sq-2"}, ids)
}

func TestListCatalogItemIDs_FollowsCursor(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cursor") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"objects": []map[string]any{{"id": "sq-1", "type": "ITEM"}},
				"cursor":  "next-page",
			})
			return
		}
		assert.Equal(t, "next-page", r.URL.Query().Get("cursor"))
		json.NewEncoder(w).Encode(map[string]any{
			"objects": []map[string]any{{"id": "sq-2", "type": "ITEM"}},
		})
	}))

	ids, err := client.ListCatalogItemIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"sq-1", "sq-2"}, ids)
}

func TestListCatalogItemIDs_HTTPErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := client.ListCatalogItemIDs(context.Background())
	assert.ErrorIs(t, err, domainErrors.ErrProviderUnavailable)
}

func TestListCatalogItemIDs_APIErrorBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{
				{"category": "AUTHENTICATION_ERROR", "code": "UNAUTHORIZED", "detail": "bad token"},
			},
		})
	}))

	_, err := client.ListCatalogItemIDs(context.Background())
	assert.ErrorIs(t, err, domainErrors.ErrProviderUnavailable)
}

func TestListCatalogItemIDs_TimeoutIsDistinct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := square.NewClient(config.SquareConfig{
		AccessToken:    "test-token",
		BaseURL:        srv.URL,
		RequestTimeout: 20 * time.Millisecond,
	}, zerolog.Nop())

	_, err := client.ListCatalogItemIDs(context.Background())
	assert.ErrorIs(t, err, domainErrors.ErrProviderTimeout)
}
