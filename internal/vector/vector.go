// Package vector implements sparse term-weight vectors over a term vocabulary.
//
// A TermVector remembers the order in which terms were first inserted. Every
// operation that builds a new vector preserves that order, so iteration (and any
// stable sort over it) is reproducible.
package vector

import "math"

// TermVector maps terms to weights. The zero value is an empty vector ready to use.
type TermVector struct {
	terms   []string
	weights map[string]float64
}

// New returns an empty vector with room for n terms.
func New(n int) *TermVector {
	return &TermVector{
		terms:   make([]string, 0, n),
		weights: make(map[string]float64, n),
	}
}

// Len returns the number of terms in the vector.
func (v *TermVector) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Weight returns the weight of term, or 0 if absent.
func (v *TermVector) Weight(term string) float64 {
	if v == nil {
		return 0
	}
	return v.weights[term]
}

// Has reports whether term is present.
func (v *TermVector) Has(term string) bool {
	if v == nil {
		return false
	}
	_, ok := v.weights[term]
	return ok
}

// Add adds w to the weight of term, inserting it at the end if absent.
func (v *TermVector) Add(term string, w float64) {
	if v.weights == nil {
		v.weights = make(map[string]float64)
	}
	if _, ok := v.weights[term]; !ok {
		v.terms = append(v.terms, term)
	}
	v.weights[term] += w
}

// Terms returns a copy of the terms in insertion order.
func (v *TermVector) Terms() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Each calls fn for every term in insertion order.
func (v *TermVector) Each(fn func(term string, weight float64)) {
	if v == nil {
		return
	}
	for _, t := range v.terms {
		fn(t, v.weights[t])
	}
}

// Map returns the weights as a plain map.
func (v *TermVector) Map() map[string]float64 {
	out := make(map[string]float64, v.Len())
	v.Each(func(t string, w float64) { out[t] = w })
	return out
}

// Norm returns the Euclidean length of the vector.
func (v *TermVector) Norm() float64 {
	sum := 0.0
	v.Each(func(_ string, w float64) { sum += w * w })
	return math.Sqrt(sum)
}

// Scale returns a new vector with every weight multiplied by f.
func (v *TermVector) Scale(f float64) *TermVector {
	out := New(v.Len())
	v.Each(func(t string, w float64) { out.Add(t, w*f) })
	return out
}

// Normalize returns v divided by its Euclidean norm. A vector whose norm is 0
// normalizes to the empty vector.
func Normalize(v *TermVector) *TermVector {
	norm := v.Norm()
	if norm == 0 {
		return New(0)
	}
	out := New(v.Len())
	v.Each(func(t string, w float64) { out.Add(t, w/norm) })
	return out
}

// MergeAdd adds every weight of src into dst, creating entries as needed.
func MergeAdd(dst, src *TermVector) {
	src.Each(func(t string, w float64) { dst.Add(t, w) })
}

// Sum returns the element-wise sum of vectors over the union of their terms.
// Terms are ordered by first appearance across vectors in the given order.
func Sum(vectors ...*TermVector) *TermVector {
	out := New(0)
	for _, v := range vectors {
		MergeAdd(out, v)
	}
	return out
}
