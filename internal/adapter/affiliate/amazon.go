// Package affiliate implements domain.ProductProvider adapters for
// affiliate product search.
package affiliate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"ftcguard/internal/adapter/resilient"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/tracer"
)

const defaultSearchLimit = 10

// AmazonProvider implements domain.ProductProvider against a
// PA-API-shaped product search endpoint. Every returned product URL
// carries the configured partner tag so commissions attribute
// correctly.
type AmazonProvider struct {
	name       string
	apiKey     string
	partnerTag string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger
	policy     resilient.Policy
}

// NewAmazonProvider creates a provider with configured timeouts.
func NewAmazonProvider(cfg config.AffiliateConfig, logger *slog.Logger) *AmazonProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://webservices.amazon.com/paapi5"
	}

	return &AmazonProvider{
		name:       cfg.Name,
		apiKey:     cfg.APIKey,
		partnerTag: cfg.PartnerTag,
		baseURL:    baseURL,
		client:     resilient.NewHTTPClient(cfg.ProviderConfig),
		logger:     logger,
		policy:     resilient.Policy{Logger: logger},
	}
}

// SearchProducts implements domain.ProductProvider.
func (p *AmazonProvider) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	ctx, span := tracer.StartSpan(ctx, "affiliate.search")
	defer span.End()

	if strings.TrimSpace(query) == "" {
		err := fmt.Errorf("%w: empty product query", domain.ErrInvalidInput)
		tracer.RecordError(span, err)
		return nil, err
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	products, err := resilient.Do(ctx, "affiliate.amazon.search", p.policy,
		func(ctx context.Context) ([]domain.Product, error) {
			return p.searchOnce(ctx, query, limit)
		})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	tracer.SetOK(span)
	p.logger.Info("product search completed",
		"provider", p.name, "query", query, "results", len(products))
	return products, nil
}

// --- PA-API wire types ---

type searchItemsRequest struct {
	Keywords   string   `json:"Keywords"`
	ItemCount  int      `json:"ItemCount"`
	PartnerTag string   `json:"PartnerTag"`
	Resources  []string `json:"Resources"`
}

type searchItemsResponse struct {
	SearchResult struct {
		Items []paapiItem `json:"Items"`
	} `json:"SearchResult"`
}

type paapiItem struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
	} `json:"ItemInfo"`
	Offers struct {
		Listings []struct {
			Price struct {
				Amount float64 `json:"Amount"`
			} `json:"Price"`
		} `json:"Listings"`
	} `json:"Offers"`
}

func (p *AmazonProvider) searchOnce(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	body, err := json.Marshal(searchItemsRequest{
		Keywords:   query,
		ItemCount:  limit,
		PartnerTag: p.partnerTag,
		Resources:  []string{"ItemInfo.Title", "Offers.Listings.Price"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}

	respBody, err := resilient.DoJSON(ctx, p.client, p.baseURL+"/searchitems", body, headers)
	if err != nil {
		return nil, err
	}

	var resp searchItemsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	products := make([]domain.Product, 0, len(resp.SearchResult.Items))
	for _, item := range resp.SearchResult.Items {
		product := domain.Product{
			ASIN:         item.ASIN,
			Title:        item.ItemInfo.Title.DisplayValue,
			AffiliateURL: p.tagURL(item.DetailPageURL),
		}
		if len(item.Offers.Listings) > 0 {
			product.Price = item.Offers.Listings[0].Price.Amount
		}
		products = append(products, product)
	}
	return products, nil
}

// tagURL appends the partner tag when the detail URL lacks one.
func (p *AmazonProvider) tagURL(url string) string {
	if p.partnerTag == "" || strings.Contains(url, "tag=") {
		return url
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "tag=" + p.partnerTag
}

// Name implements domain.ProductProvider.
func (p *AmazonProvider) Name() string { return p.name }

// Configured implements domain.ProductProvider.
func (p *AmazonProvider) Configured() bool { return p.apiKey != "" }
