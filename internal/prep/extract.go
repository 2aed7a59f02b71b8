// Package prep turns raw records into scaled, partitioned training data for one company.
package prep

import (
	"github.com/wonny/vwapcast/internal/contracts"
)

// Symbols returns the distinct symbols in first-appearance order
func Symbols(records []contracts.Record) []string {
	seen := make(map[string]struct{})
	var symbols []string
	for _, r := range records {
		if _, ok := seen[r.Symbol]; ok {
			continue
		}
		seen[r.Symbol] = struct{}{}
		symbols = append(symbols, r.Symbol)
	}
	return symbols
}

// ExtractCompany returns the rows of symbol in their original order.
// Returns *contracts.EmptySeriesError when nothing matches.
func ExtractCompany(records []contracts.Record, symbol string) (contracts.CompanySeries, error) {
	series := contracts.CompanySeries{Symbol: symbol}
	for _, r := range records {
		if r.Symbol == symbol {
			series.Records = append(series.Records, r)
		}
	}
	if len(series.Records) == 0 {
		return series, &contracts.EmptySeriesError{Symbol: symbol}
	}
	return series, nil
}

// GroupBySymbol extracts every company in one pass, keyed by symbol
func GroupBySymbol(records []contracts.Record) map[string]contracts.CompanySeries {
	groups := make(map[string]contracts.CompanySeries)
	for _, r := range records {
		s := groups[r.Symbol]
		s.Symbol = r.Symbol
		s.Records = append(s.Records, r)
		groups[r.Symbol] = s
	}
	return groups
}
