package utils

// map each element in sli.
//
// args:
//     - sli : slice of `T`s
//     - mapper : mapping function from T to R
// return:
//     slice of `R`s.
//     each element indexed `N` is given with `mapper(sli[N])` .
func Map[T any, R any](sli []T, mapper func(v T) R) []R {
	ret := make([]R, len(sli))
	for nth, v := range sli {
		ret[nth] = mapper(v)
	}
	return ret
}

// Default dereferences p, or returns d when p is nil.
func Default[T any](p *T, d T) T {
	if p == nil {
		return d
	}
	return *p
}

// Contains reports whether needle is an element of sli.
func Contains[T comparable](sli []T, needle T) bool {
	for _, v := range sli {
		if v == needle {
			return true
		}
	}
	return false
}

// Concat concatenates slices into a single new slice.
func Concat[T any](slis ...[]T) []T {
	total := 0
	for _, s := range slis {
		total += len(s)
	}
	ret := make([]T, 0, total)
	for _, s := range slis {
		ret = append(ret, s...)
	}
	return ret
}
