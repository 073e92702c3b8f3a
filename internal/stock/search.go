package stock

import (
	"context"
	"strings"

	"stocktracker/internal/model"
)

const searchLimit = 10

// Search matches the query against the catalog by symbol or name substring.
// An unknown short query may still be a real ticker, so it gets one live
// lookup; a miss there just means no extra result.
func (s *Service) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []model.SearchResult{}, nil
	}
	qUpper := strings.ToUpper(q)
	qLower := strings.ToLower(q)

	results := []model.SearchResult{}
	exact := false
	for _, c := range catalog {
		if strings.Contains(c.Symbol, qUpper) || strings.Contains(strings.ToLower(c.Name), qLower) {
			results = append(results, commonStock(c.Symbol, c.Name))
			if c.Symbol == qUpper {
				exact = true
			}
		}
	}

	if !exact && len(qUpper) <= 5 && symbolRe.MatchString(qUpper) {
		if quote, err := s.data.Quote(ctx, qUpper); err == nil {
			results = append([]model.SearchResult{commonStock(quote.Symbol, catalogName(quote.Symbol))}, results...)
		}
	}

	if len(results) > searchLimit {
		results = results[:searchLimit]
	}
	return results, nil
}

func commonStock(symbol, name string) model.SearchResult {
	return model.SearchResult{
		Symbol:   symbol,
		Name:     name,
		Type:     "Common Stock",
		Region:   "US",
		Currency: "USD",
	}
}
