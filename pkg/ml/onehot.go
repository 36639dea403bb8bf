package ml

import "sort"

// OneHotEncoder maps a categorical value to an indicator vector over
// the categories seen at fit time.
//
// A value unseen at fit time encodes as the all-zero vector instead
// of failing, so inference tolerates categories training never saw.
type OneHotEncoder struct {
	Categories []string
}

func (e *OneHotEncoder) Fit(values []string) {
	seen := map[string]bool{}
	for _, v := range values {
		seen[v] = true
	}
	e.Categories = make([]string, 0, len(seen))
	for v := range seen {
		e.Categories = append(e.Categories, v)
	}
	sort.Strings(e.Categories)
}

// Width is the length of the encoded vector.
func (e *OneHotEncoder) Width() int {
	return len(e.Categories)
}

// Encode writes the indicator vector for v into out, which must have
// length Width.
func (e *OneHotEncoder) Encode(v string, out []float64) {
	for i := range out {
		out[i] = 0
	}
	for i, c := range e.Categories {
		if c == v {
			out[i] = 1
			return
		}
	}
}
