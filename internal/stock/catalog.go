package stock

// catalog is the static lookup table behind search and trending. Large-cap
// US names only; anything else resolves through the live exact-symbol path.
var catalog = []struct {
	Symbol string
	Name   string
}{
	{"AAPL", "Apple Inc."},
	{"MSFT", "Microsoft Corporation"},
	{"GOOGL", "Alphabet Inc."},
	{"AMZN", "Amazon.com Inc."},
	{"TSLA", "Tesla Inc."},
	{"META", "Meta Platforms Inc."},
	{"NVDA", "NVIDIA Corporation"},
	{"NFLX", "Netflix Inc."},
	{"AMD", "Advanced Micro Devices Inc."},
	{"INTC", "Intel Corporation"},
	{"JPM", "JPMorgan Chase & Co."},
	{"V", "Visa Inc."},
	{"JNJ", "Johnson & Johnson"},
	{"WMT", "Walmart Inc."},
	{"PG", "Procter & Gamble Co."},
	{"UNH", "UnitedHealth Group Inc."},
	{"DIS", "Walt Disney Co."},
	{"HD", "Home Depot Inc."},
	{"MA", "Mastercard Inc."},
	{"BAC", "Bank of America Corp."},
}

// trendingSymbols is the fixed universe the trending job ranks.
var trendingSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX", "AMD", "INTC",
}

// catalogName returns the display name for a known symbol, or the symbol
// itself.
func catalogName(symbol string) string {
	for _, c := range catalog {
		if c.Symbol == symbol {
			return c.Name
		}
	}
	return symbol
}
