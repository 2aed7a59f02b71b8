package report

import "math/rand"

// SampleCompanies picks up to k symbols uniformly without replacement.
// The same (symbols, k, seed) always yields the same sample.
func SampleCompanies(symbols []string, k int, seed int64) []string {
	if k > len(symbols) {
		k = len(symbols)
	}
	if k <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	picked := make([]string, 0, k)
	for _, i := range rng.Perm(len(symbols))[:k] {
		picked = append(picked, symbols[i])
	}
	return picked
}
