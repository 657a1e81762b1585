package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trendyol/parser/internal/client"
	"trendyol/parser/internal/domain"
	"trendyol/parser/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, url string) (*domain.ParserResponse, error) {
	args := m.Called(url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParserResponse), args.Error(1)
}

func (m *MockParser) ParseSingle(ctx context.Context, url string) (*domain.ParserResponse, error) {
	args := m.Called(url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ParserResponse), args.Error(1)
}

func (m *MockParser) GetAggregations(ctx context.Context, slug string) []domain.Aggregation {
	args := m.Called(slug)
	return args.Get(0).([]domain.Aggregation)
}

func (m *MockParser) GetProducts(ctx context.Context, slug string, page int) domain.SearchResult {
	args := m.Called(slug, page)
	return args.Get(0).(domain.SearchResult)
}

type MockJobs struct {
	mock.Mock
}

func (m *MockJobs) Enqueue(ctx context.Context, url string, single bool) (*domain.Job, error) {
	args := m.Called(url, single)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobs) Job(ctx context.Context, jobID string) (*domain.Job, *domain.ParserResponse, error) {
	args := m.Called(jobID)
	job, _ := args.Get(0).(*domain.Job)
	result, _ := args.Get(1).(*domain.ParserResponse)
	return job, result, args.Error(2)
}

const siteBase = "https://www.trendyol.com"

func serve(t *testing.T, p *MockParser, j *MockJobs, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	NewRouter(NewHandlers(p, j, siteBase)).ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, new(MockParser), new(MockJobs), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestParseEndpoint(t *testing.T) {
	resp := domain.NewParserResponse()
	resp.GroupID = "g1"
	resp.Products = append(resp.Products, domain.ParsedProduct{ID: "1"})

	tests := []struct {
		name         string
		body         string
		setup        func(p *MockParser)
		expectedCode int
		contains     string
	}{
		{
			name:         "Group parse",
			body:         `{"url":"https://www.trendyol.com/x-p-1"}`,
			setup:        func(p *MockParser) { p.On("Parse", "https://www.trendyol.com/x-p-1").Return(resp, nil) },
			expectedCode: http.StatusOK,
			contains:     `"groupId":"g1"`,
		},
		{
			name:         "Single parse",
			body:         `{"url":"https://www.trendyol.com/x-p-1","single":true}`,
			setup:        func(p *MockParser) { p.On("ParseSingle", "https://www.trendyol.com/x-p-1").Return(resp, nil) },
			expectedCode: http.StatusOK,
			contains:     `"products":[{`,
		},
		{
			name:         "Missing url",
			body:         `{}`,
			setup:        func(p *MockParser) {},
			expectedCode: http.StatusBadRequest,
			contains:     "url is required",
		},
		{
			name:         "Invalid body",
			body:         `{`,
			setup:        func(p *MockParser) {},
			expectedCode: http.StatusBadRequest,
			contains:     "invalid request body",
		},
		{
			name: "Upstream failure",
			body: `{"url":"https://www.trendyol.com/x-p-1"}`,
			setup: func(p *MockParser) {
				p.On("Parse", "https://www.trendyol.com/x-p-1").
					Return(nil, &client.TransportError{URL: "https://www.trendyol.com/x-p-1", StatusCode: 503})
			},
			expectedCode: http.StatusBadGateway,
			contains:     "upstream request failed",
		},
		{
			name:         "Internal failure",
			body:         `{"url":"https://www.trendyol.com/x-p-1"}`,
			setup:        func(p *MockParser) { p.On("Parse", "https://www.trendyol.com/x-p-1").Return(nil, errors.New("boom")) },
			expectedCode: http.StatusInternalServerError,
			contains:     "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockParser)
			tt.setup(p)

			rec := serve(t, p, new(MockJobs), http.MethodPost, "/api/v1/parse", tt.body)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			p.AssertExpectations(t)
		})
	}
}

func TestParseEndpointRejectsForeignURL(t *testing.T) {
	var hits int
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer internal.Close()

	targets := []string{
		internal.URL + "/admin/secret",
		"file:///etc/passwd",
		"https://www.trendyol.com.evil.test/x-p-1",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			p := new(MockParser)
			j := new(MockJobs)
			body := `{"url":"` + target + `","single":true}`

			rec := serve(t, p, j, http.MethodPost, "/api/v1/parse", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotContains(t, rec.Body.String(), "401")

			rec = serve(t, p, j, http.MethodPost, "/api/v1/jobs", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			p.AssertNotCalled(t, "Parse", mock.Anything)
			p.AssertNotCalled(t, "ParseSingle", mock.Anything)
			j.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
		})
	}

	assert.Zero(t, hits)
}

func TestAggregationsEndpoint(t *testing.T) {
	p := new(MockParser)
	p.On("GetAggregations", "erkek-t-shirt").Return([]domain.Aggregation{domain.Aggregation(`{"group":"BRAND"}`)})

	rec := serve(t, p, new(MockJobs), http.MethodGet, "/api/v1/aggregations/erkek-t-shirt", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"aggregations":[{"group":"BRAND"}]}`, rec.Body.String())
}

func TestProductsEndpoint(t *testing.T) {
	p := new(MockParser)
	p.On("GetProducts", "sr", 1).Return(domain.EmptySearchResult())
	p.On("GetProducts", "sr", 4).Return(domain.SearchResult{Products: []json.RawMessage{json.RawMessage(`{"id":1}`)}, TotalCount: 77})

	rec := serve(t, p, new(MockJobs), http.MethodGet, "/api/v1/products/sr", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[],"total_count":0}`, rec.Body.String())

	rec = serve(t, p, new(MockJobs), http.MethodGet, "/api/v1/products/sr?page=4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"products":[{"id":1}],"total_count":77}`, rec.Body.String())

	rec = serve(t, p, new(MockJobs), http.MethodGet, "/api/v1/products/sr?page=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobEndpoint(t *testing.T) {
	j := new(MockJobs)
	j.On("Enqueue", siteBase+"/x-p-1", false).
		Return(&domain.Job{ID: "job-1", URL: siteBase + "/x-p-1", Status: domain.JobStatusPending}, nil)

	rec := serve(t, new(MockParser), j, http.MethodPost, "/api/v1/jobs", `{"url":"https://www.trendyol.com/x-p-1"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	var body JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "job-1", body.Job.ID)
	assert.Nil(t, body.Result)
}

func TestGetJobEndpoint(t *testing.T) {
	j := new(MockJobs)
	result := domain.NewParserResponse()
	result.GroupID = "g9"
	j.On("Job", "job-1").Return(&domain.Job{ID: "job-1", Status: domain.JobStatusDone}, result, nil)
	j.On("Job", "missing").Return(nil, nil, state.ErrJobNotFound)

	rec := serve(t, new(MockParser), j, http.MethodGet, "/api/v1/jobs/job-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"groupId":"g9"`)
	assert.Contains(t, rec.Body.String(), `"status":"done"`)

	rec = serve(t, new(MockParser), j, http.MethodGet, "/api/v1/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
