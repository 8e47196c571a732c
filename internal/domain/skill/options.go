package skill

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithInitialMu sets the mean assigned to new players.
func WithInitialMu(mu float64) Option {
	return func(m *Model) {
		m.mu0 = mu
	}
}

// WithInitialSigma sets the uncertainty assigned to new players.
func WithInitialSigma(sigma float64) Option {
	return func(m *Model) {
		if sigma > 0 {
			m.sigma0 = sigma
		}
	}
}

// WithBeta sets the performance-variance constant.
func WithBeta(beta float64) Option {
	return func(m *Model) {
		if beta > 0 {
			m.beta = beta
		}
	}
}

// WithDrawProbability sets the expected draw probability used to derive the
// draw margin. Must be in [0, 1).
func WithDrawProbability(p float64) Option {
	return func(m *Model) {
		if p >= 0 && p < 1 {
			m.drawProb = p
		}
	}
}

// WithSigmaFloor sets the lower bound on sigma after an update.
func WithSigmaFloor(floor float64) Option {
	return func(m *Model) {
		if floor > 0 {
			m.sigmaFloor = floor
		}
	}
}
