package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"trendyol/parser/internal/config"
	"trendyol/parser/internal/domain"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

type TrendyolClient interface {
	GetProductState(ctx context.Context, pageURL string) (*domain.ProductState, error)
	GetProductGroup(ctx context.Context, groupID string) (*domain.GroupResponse, error)
	GetAggregations(ctx context.Context, slug string) ([]domain.Aggregation, error)
	GetProducts(ctx context.Context, slug string, page int) (domain.SearchResult, error)
}

type trendyolClient struct {
	apiURL     string
	httpClient *resty.Client
}

func NewTrendyolClient(cfg config.TrendyolConfig) TrendyolClient {
	client := resty.New().
		SetTimeout(cfg.RequestTimeout()).
		SetRetryCount(cfg.MaxRetries).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "tr-TR,tr;q=0.9,en;q=0.5")

	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
		log.Infof("🔗 Using proxy: %s", cfg.Proxy)
	}

	return &trendyolClient{
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: client,
	}
}

// GetProductState fetches a product page and extracts its embedded state.
// Pages without state return ErrStateNotFound.
func (c *trendyolClient) GetProductState(ctx context.Context, pageURL string) (*domain.ProductState, error) {
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	state, err := ExtractEmbeddedState(string(body))
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			decodeErr.URL = pageURL
		}
		return nil, err
	}

	log.Debugf("Extracted product state from %s", pageURL)
	return state, nil
}

func (c *trendyolClient) GetProductGroup(ctx context.Context, groupID string) (*domain.GroupResponse, error) {
	groupURL := fmt.Sprintf("%s/webbrowsinggw/api/productGroup/%s", c.apiURL, url.PathEscape(groupID))

	body, err := c.fetch(ctx, groupURL)
	if err != nil {
		return nil, err
	}

	var group domain.GroupResponse
	if err := DecodeJSON(groupURL, body, &group); err != nil {
		return nil, err
	}

	return &group, nil
}

func (c *trendyolClient) GetAggregations(ctx context.Context, slug string) ([]domain.Aggregation, error) {
	aggURL := fmt.Sprintf("%s/websearchgw/v2/api/aggregations/%s", c.apiURL, strings.TrimLeft(slug, "/"))

	body, err := c.fetch(ctx, aggURL)
	if err != nil {
		return nil, err
	}

	var resp domain.AggregationsResponse
	if err := DecodeJSON(aggURL, body, &resp); err != nil {
		return nil, err
	}

	aggregations := make([]domain.Aggregation, 0)
	if resp.Result != nil {
		aggregations = append(aggregations, resp.Result.Aggregations...)
	}

	return aggregations, nil
}

func (c *trendyolClient) GetProducts(ctx context.Context, slug string, page int) (domain.SearchResult, error) {
	filterURL := fmt.Sprintf("%s/websearchgw/v2/api/filter/%s?pi=%d", c.apiURL, strings.TrimLeft(slug, "/"), page)

	body, err := c.fetch(ctx, filterURL)
	if err != nil {
		return domain.EmptySearchResult(), err
	}

	var resp domain.FilterResponse
	if err := DecodeJSON(filterURL, body, &resp); err != nil {
		return domain.EmptySearchResult(), err
	}

	result := domain.EmptySearchResult()
	if resp.Result != nil {
		if resp.Result.Products != nil {
			result.Products = resp.Result.Products
		}
		result.TotalCount = resp.Result.TotalCount
	}

	return result, nil
}

func (c *trendyolClient) fetch(ctx context.Context, target string) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(target)

	if err != nil {
		// Check if this is a context cancellation from the caller
		if ctx.Err() != nil {
			return nil, &TransportError{URL: target, Err: fmt.Errorf("request cancelled: %w", ctx.Err())}
		}
		return nil, &TransportError{URL: target, Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, &TransportError{URL: target, StatusCode: resp.StatusCode()}
	}

	return []byte(resp.String()), nil
}
