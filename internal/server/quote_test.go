package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/subwavelabs/subwave/internal/catalog/domain"
	"github.com/subwavelabs/subwave/internal/observability"
	pricingdomain "github.com/subwavelabs/subwave/internal/pricing/domain"
	promodomain "github.com/subwavelabs/subwave/internal/promo/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pricingSvcStub struct {
	result *pricingdomain.QuoteResult
	price  *pricingdomain.ComponentPrice
	err    error
}

func (p *pricingSvcStub) ComputeTotal(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.QuoteResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func (p *pricingSvcStub) PricePeriod(ctx context.Context, req pricingdomain.PeriodQuoteRequest) (*pricingdomain.ComponentPrice, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.price, nil
}

func (p *pricingSvcStub) PriceTraffic(ctx context.Context, req pricingdomain.TrafficQuoteRequest) (*pricingdomain.ComponentPrice, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.price, nil
}

func (p *pricingSvcStub) PriceServers(ctx context.Context, req pricingdomain.ServersQuoteRequest) (*pricingdomain.ServersPrice, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &pricingdomain.ServersPrice{ComponentPrice: *p.price}, nil
}

func (p *pricingSvcStub) PriceDevices(ctx context.Context, req pricingdomain.DevicesQuoteRequest) (*pricingdomain.ComponentPrice, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.price, nil
}

func setupServerTest(t *testing.T, pricingSvc pricingdomain.Service) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	engine := NewEngine(observability.Config{}, nil)
	return NewServer(ServerParams{
		Gin:        engine,
		GenID:      node,
		PricingSvc: pricingSvc,
	})
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestComputeQuote_OK(t *testing.T) {
	stub := &pricingSvcStub{
		result: &pricingdomain.QuoteResult{
			TotalCents:      12600,
			DiscountPercent: 10,
			DiscountOrigin:  promodomain.OriginPromoGroup,
		},
	}
	s := setupServerTest(t, stub)

	rec := postJSON(t, s, "/v1/quotes", pricingdomain.QuoteRequest{PeriodDays: 30, TrafficGB: 50})
	require.Equal(t, http.StatusOK, rec.Code)

	var result pricingdomain.QuoteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, int64(12600), result.TotalCents)
	assert.Equal(t, promodomain.OriginPromoGroup, result.DiscountOrigin)
}

func TestComputeQuote_MalformedBody(t *testing.T) {
	s := setupServerTest(t, &pricingSvcStub{})

	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
}

func TestComputeQuote_ValidationErrorMapsTo400(t *testing.T) {
	s := setupServerTest(t, &pricingSvcStub{err: pricingdomain.ErrInvalidPeriodDays})

	rec := postJSON(t, s, "/v1/quotes", pricingdomain.QuoteRequest{PeriodDays: -1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "invalid_period_days", resp.Error.Errors[0].Code)
	assert.Equal(t, "period_days", resp.Error.Errors[0].Field)
}

func TestComputeQuote_NotFoundMapsTo404(t *testing.T) {
	s := setupServerTest(t, &pricingSvcStub{err: promodomain.ErrPromoGroupNotFound})

	rec := postJSON(t, s, "/v1/quotes", pricingdomain.QuoteRequest{PeriodDays: 30, PromoGroupID: "123"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Error.Type)
}

func TestComputeQuote_UnsupportedPeriodMapsTo404(t *testing.T) {
	s := setupServerTest(t, &pricingSvcStub{err: catalogdomain.ErrPeriodNotSupported})

	rec := postJSON(t, s, "/v1/quotes", pricingdomain.QuoteRequest{PeriodDays: 45})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuotePeriod_OK(t *testing.T) {
	stub := &pricingSvcStub{
		price: &pricingdomain.ComponentPrice{
			OriginalCents:   10000,
			DiscountedCents: 9000,
			DiscountCents:   1000,
			DiscountPercent: 10,
		},
	}
	s := setupServerTest(t, stub)

	rec := postJSON(t, s, "/v1/quotes/period", pricingdomain.PeriodQuoteRequest{PeriodDays: 30, SubscriberID: "1234"})
	require.Equal(t, http.StatusOK, rec.Code)

	var price pricingdomain.ComponentPrice
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &price))
	assert.Equal(t, int64(9000), price.DiscountedCents)
}

func TestHealthEndpoint(t *testing.T) {
	s := setupServerTest(t, &pricingSvcStub{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
