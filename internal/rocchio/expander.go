// Package rocchio implements Rocchio query expansion over term vectors and
// the selection of new query terms from an expanded vector.
package rocchio

import "qexpand/internal/vector"

// Coefficients weight the original query (Alpha), the relevant centroid (Beta)
// and the non-relevant centroid (Gamma).
type Coefficients struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// DefaultCoefficients are the classic Rocchio weights used for relevance feedback.
var DefaultCoefficients = Coefficients{Alpha: 1.0, Beta: 0.75, Gamma: 0.15}

// Expander moves a query vector toward the relevant documents and away from
// the non-relevant ones.
type Expander struct {
	coef Coefficients
}

// NewExpander creates an expander with the given coefficients.
func NewExpander(coef Coefficients) *Expander {
	return &Expander{coef: coef}
}

// Expand returns the normalized Rocchio vector
//
//	alpha*q + beta*norm(sum(R))/|R| - gamma*norm(sum(NR))/|NR|
//
// An empty relevant or non-relevant set contributes nothing. Term order is
// query terms first, then relevant terms, then non-relevant terms, each in
// order of first appearance.
func (e *Expander) Expand(query *vector.TermVector, relevant, nonRelevant []*vector.TermVector) *vector.TermVector {
	expanded := query.Scale(e.coef.Alpha)

	if dr := len(relevant); dr > 0 {
		centroid := vector.Normalize(vector.Sum(relevant...))
		centroid.Each(func(t string, w float64) {
			expanded.Add(t, e.coef.Beta*w/float64(dr))
		})
	}
	if dnr := len(nonRelevant); dnr > 0 {
		centroid := vector.Normalize(vector.Sum(nonRelevant...))
		centroid.Each(func(t string, w float64) {
			expanded.Add(t, -e.coef.Gamma*w/float64(dnr))
		})
	}

	return vector.Normalize(expanded)
}
