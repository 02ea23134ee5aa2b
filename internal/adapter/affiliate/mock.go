package affiliate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ftcguard/internal/domain"
)

// MockProductProvider implements domain.ProductProvider with canned
// results and no network calls.
type MockProductProvider struct {
	name   string
	logger *slog.Logger
}

// NewMockProductProvider creates a mock standing in for the named provider.
func NewMockProductProvider(name string, logger *slog.Logger) *MockProductProvider {
	return &MockProductProvider{name: name, logger: logger}
}

// SearchProducts implements domain.ProductProvider.
func (p *MockProductProvider) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty product query", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > 3 {
		limit = 3
	}

	p.logger.Debug("mock product search", "provider", p.name, "query", query)

	products := make([]domain.Product, 0, limit)
	for i := 0; i < limit; i++ {
		products = append(products, domain.Product{
			ASIN:         fmt.Sprintf("B0MOCK%04d", i+1),
			Title:        fmt.Sprintf("MOCK RESPONSE: %s (option %d)", query, i+1),
			AffiliateURL: fmt.Sprintf("https://example.com/dp/B0MOCK%04d?tag=mock-20", i+1),
			Price:        19.99 + float64(i)*10,
		})
	}
	return products, nil
}

// Name implements domain.ProductProvider.
func (p *MockProductProvider) Name() string { return p.name }

// Configured implements domain.ProductProvider.
func (p *MockProductProvider) Configured() bool { return false }
