package skill

import "math"

// Denominators below this are treated as numerically zero and replaced by
// the asymptotic limits of the truncated-Gaussian corrections.
const tiny = 1e-15

// normPDF is the density of the standard normal at x.
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// normCDF is the cumulative distribution of the standard normal at x.
func normCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// normPPF is the inverse of normCDF.
func normPPF(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

// vwExceeds returns the additive mean correction v and the variance-shrink
// term w for a decisive outcome: the winning side exceeded the losing side
// by more than the margin. t is the standardized mean difference seen from
// the winner, eps the standardized draw margin. w is always in [0, 1].
func vwExceeds(t, eps float64) (float64, float64) {
	denom := normCDF(t - eps)
	if denom < tiny {
		if t < 0 {
			return eps - t, 1
		}
		return eps - t, 0
	}
	v := normPDF(t-eps) / denom
	return v, v * (v + t - eps)
}

// vwWithin returns the mean correction v and variance-shrink term w for an
// outcome inside the draw margin. v is odd in t, w is even.
func vwWithin(t, eps float64) (float64, float64) {
	ta := math.Abs(t)
	denom := normCDF(eps-ta) - normCDF(-eps-ta)
	if denom < tiny {
		if t < 0 {
			return -t - eps, 1
		}
		return -t + eps, 1
	}
	v := (normPDF(-eps-ta) - normPDF(eps-ta)) / denom
	w := v*v + ((eps-ta)*normPDF(eps-ta)+(eps+ta)*normPDF(eps+ta))/denom
	if t < 0 {
		v = -v
	}
	return v, w
}
