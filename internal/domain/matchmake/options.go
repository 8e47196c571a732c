package matchmake

// Option applies a configuration option to the Matchmaker.
type Option func(*Matchmaker)

// WithExhaustiveLimit sets the largest pool searched exhaustively; larger
// pools use the local-search fallback.
func WithExhaustiveLimit(limit int) Option {
	return func(m *Matchmaker) {
		if limit > 0 {
			m.exhaustiveLimit = limit
		}
	}
}

// WithSwapBudget caps the number of quality evaluations a search may spend.
func WithSwapBudget(budget int) Option {
	return func(m *Matchmaker) {
		if budget > 0 {
			m.swapBudget = budget
		}
	}
}

// WithWorkerCount sets the number of goroutines evaluating candidates
// during exhaustive search.
func WithWorkerCount(count int) Option {
	return func(m *Matchmaker) {
		if count > 0 {
			m.workers = count
		}
	}
}

// WithTopK sets how many ranked assignments a search returns.
func WithTopK(k int) Option {
	return func(m *Matchmaker) {
		if k > 0 {
			m.topK = k
		}
	}
}
