package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"trendyol/parser/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (TrendyolClient, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewTrendyolClient(config.TrendyolConfig{
		BaseURL:   server.URL,
		APIURL:    server.URL,
		Timeout:   5,
		UserAgent: "test-agent",
	})
	return client, server
}

func TestGetProductState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/product-p-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`<html><script>window.__PRODUCT_DETAIL_APP_INITIAL_STATE__ = {"product":{"id":1}};</script></html>`))
	})
	mux.HandleFunc("/category", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>listing</body></html>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<script>window.__PRODUCT_DETAIL_APP_INITIAL_STATE__ = {oops};</script>`))
	})
	client, server := newTestClient(t, mux)

	state, err := client.GetProductState(context.Background(), server.URL+"/product-p-1")
	require.NoError(t, err)
	assert.Equal(t, "1", state.Product.ID.String())

	_, err = client.GetProductState(context.Background(), server.URL+"/category")
	assert.ErrorIs(t, err, ErrStateNotFound)

	_, err = client.GetProductState(context.Background(), server.URL+"/broken")
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, server.URL+"/broken", decodeErr.URL)
}

func TestGetProductStateHTTPError(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.GetProductState(context.Background(), server.URL+"/p")
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusForbidden, transportErr.StatusCode)
}

func TestGetProductGroup(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/webbrowsinggw/api/productGroup/555", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"slicingAttributes":[{"displayName":"Renk","attributes":[{"name":"Siyah","beautifiedName":"siyah","contents":[{"id":1,"url":"/b/p-1"}]}]}]}}`))
	}))

	group, err := client.GetProductGroup(context.Background(), "555")
	require.NoError(t, err)
	require.NotNil(t, group.Result)
	require.Len(t, group.Result.SlicingAttributes, 1)
	assert.Equal(t, "Renk", group.Result.SlicingAttributes[0].DisplayName)
	assert.Equal(t, "/b/p-1", group.Result.SlicingAttributes[0].Attributes[0].Contents[0].URL)
}

func TestGetAggregations(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/websearchgw/v2/api/aggregations/erkek-t-shirt-x-g2-c73", r.URL.Path)
		w.Write([]byte(`{"result":{"aggregations":[{"group":"BRAND"},{"group":"SIZE"}]}}`))
	}))

	aggregations, err := client.GetAggregations(context.Background(), "erkek-t-shirt-x-g2-c73")
	require.NoError(t, err)
	require.Len(t, aggregations, 2)
	assert.JSONEq(t, `{"group":"BRAND"}`, string(aggregations[0]))
}

func TestGetProducts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/websearchgw/v2/api/filter/sr", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("pi"))
		w.Write([]byte(`{"result":{"products":[{"id":1},{"id":2}],"totalCount":240}}`))
	}))

	result, err := client.GetProducts(context.Background(), "sr", 3)
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
	assert.Equal(t, 240, result.TotalCount)
}

func TestGetProductsDecodeError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))

	result, err := client.GetProducts(context.Background(), "sr", 1)
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Empty(t, result.Products)
	assert.NotNil(t, result.Products)
	assert.Equal(t, 0, result.TotalCount)
}

func TestFetchCancelledContext(t *testing.T) {
	client, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetProductState(ctx, server.URL+"/p")
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.ErrorIs(t, err, context.Canceled)
}
