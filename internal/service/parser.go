package service

import (
	"trendyol/parser/internal/client"
	"trendyol/parser/internal/domain"
	"trendyol/parser/internal/normalizer"
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Parser sequences the page, group and sibling fetches of one parse run.
// It keeps no state between calls and is safe for concurrent use.
type Parser struct {
	client     client.TrendyolClient
	normalizer *normalizer.Normalizer
}

func NewParser(client client.TrendyolClient, normalizer *normalizer.Normalizer) *Parser {
	return &Parser{
		client:     client,
		normalizer: normalizer,
	}
}

// parseRun carries the state of a single Parse call.
type parseRun struct {
	*Parser
	response *domain.ParserResponse
	groups   map[string]*domain.GroupResponse
}

func (p *Parser) newRun() *parseRun {
	return &parseRun{
		Parser:   p,
		response: domain.NewParserResponse(),
		groups:   make(map[string]*domain.GroupResponse),
	}
}

// Parse parses the product at url together with every sibling page of its
// slicing attribute. A URL that isn't a product page yields an empty
// response. Transport and decode errors are returned to the caller.
func (p *Parser) Parse(ctx context.Context, url string) (*domain.ParserResponse, error) {
	run := p.newRun()

	product, err := run.fetchProduct(ctx, url)
	if err != nil {
		return nil, err
	}
	if product == nil {
		log.Debugf("No product state at %s", url)
		return run.response, nil
	}

	group, err := run.fetchGroup(ctx, product.ProductGroupID.String())
	if err != nil {
		return nil, err
	}

	p.normalizer.ApplyBase(run.response, product)

	contents := normalizer.SlicingContents(normalizer.SlicingAttribute(group))
	if len(contents) == 0 {
		run.response.Products = append(run.response.Products, p.normalizer.BuildProduct(product))
		return run.response, nil
	}

	log.Debugf("Group %s has %d sibling pages", run.response.GroupID, len(contents))

	for _, content := range contents {
		siblingURL := p.normalizer.AbsoluteURL(content.URL)

		sibling, err := run.fetchProduct(ctx, siblingURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s %s: %w", content.AttrName, siblingURL, err)
		}
		if sibling == nil {
			log.Warnf("⚠️ Skipping %s: no product state", siblingURL)
			continue
		}

		if _, err := run.fetchGroup(ctx, sibling.ProductGroupID.String()); err != nil {
			return nil, err
		}

		run.response.Products = append(run.response.Products, p.normalizer.BuildProduct(sibling))
	}

	return run.response, nil
}

// ParseSingle parses only the page at url and never consults the group API.
func (p *Parser) ParseSingle(ctx context.Context, url string) (*domain.ParserResponse, error) {
	run := p.newRun()

	product, err := run.fetchProduct(ctx, url)
	if err != nil {
		return nil, err
	}
	if product != nil {
		p.normalizer.ApplyBase(run.response, product)
		run.response.Products = append(run.response.Products, p.normalizer.BuildProduct(product))
	}

	return run.response, nil
}

// GetAggregations returns the filter aggregations for a category or search
// slug. Failures are logged and reported as an empty list.
func (p *Parser) GetAggregations(ctx context.Context, slug string) []domain.Aggregation {
	aggregations, err := p.client.GetAggregations(ctx, slug)
	if err != nil {
		log.Warnf("⚠️ Failed to get aggregations for %s: %v", slug, err)
		return make([]domain.Aggregation, 0)
	}
	return aggregations
}

// GetProducts returns one page of the filter endpoint. Pages below 1 are
// read as 1. Failures are logged and reported as an empty result.
func (p *Parser) GetProducts(ctx context.Context, slug string, page int) domain.SearchResult {
	if page < 1 {
		page = 1
	}

	result, err := p.client.GetProducts(ctx, slug, page)
	if err != nil {
		log.Warnf("⚠️ Failed to get products for %s page %d: %v", slug, page, err)
		return domain.EmptySearchResult()
	}
	return result
}

// fetchProduct returns nil without error when the page has no product.
func (r *parseRun) fetchProduct(ctx context.Context, url string) (*domain.Product, error) {
	state, err := r.client.GetProductState(ctx, url)
	if err != nil {
		if errors.Is(err, client.ErrStateNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}

	return state.Product, nil
}

// fetchGroup memoizes group lookups by id for the duration of the run.
// Products without a group id have no group.
func (r *parseRun) fetchGroup(ctx context.Context, groupID string) (*domain.GroupResponse, error) {
	if groupID == "" {
		return nil, nil
	}
	if group, ok := r.groups[groupID]; ok {
		return group, nil
	}

	group, err := r.client.GetProductGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product group %s: %w", groupID, err)
	}

	r.groups[groupID] = group
	return group, nil
}
