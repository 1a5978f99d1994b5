package field

// Polynomial is a dense coefficient-form polynomial over the extension
// field, coefficients in increasing degree order. It backs the FRI
// last-layer polynomial and the handful of places the STARK core needs to
// manipulate a polynomial directly rather than through its evaluations.
type Polynomial struct {
	coeffs []ExtFE
}

// NewPolynomial builds a polynomial from coefficients in increasing degree
// order, trimming trailing zero coefficients.
func NewPolynomial(coeffs []ExtFE) Polynomial {
	n := len(coeffs)
	for n > 0 && coeffs[n-1].IsZero() {
		n--
	}
	out := make([]ExtFE, n)
	copy(out, coeffs[:n])
	return Polynomial{coeffs: out}
}

// Degree returns the polynomial's degree; the zero polynomial has degree -1.
func (p Polynomial) Degree() int { return len(p.coeffs) - 1 }

// Coefficients returns a copy of the coefficient vector.
func (p Polynomial) Coefficients() []ExtFE {
	out := make([]ExtFE, len(p.coeffs))
	copy(out, p.coeffs)
	return out
}

// Coefficient returns the coefficient of x^degree, or zero past the end.
func (p Polynomial) Coefficient(degree int) ExtFE {
	if degree < 0 || degree >= len(p.coeffs) {
		return ExtZero()
	}
	return p.coeffs[degree]
}

// Eval evaluates the polynomial at point x via Horner's method.
func (p Polynomial) Eval(x ExtFE) ExtFE {
	result := ExtZero()
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.coeffs[i])
	}
	return result
}

// IsZero reports whether p is the zero polynomial.
func (p Polynomial) IsZero() bool { return len(p.coeffs) == 0 }
