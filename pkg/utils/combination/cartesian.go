package combination

import "github.com/leadscore/leadscore/pkg/utils"

// MapCartesian picks one item per key from basis and generates the
// cartesian product of all such choices.
//
// For example,
//
//	MapCartesian(map[string][]string{
//		"C":       {"0.1", "1"},
//		"penalty": {"l1", "l2"},
//	})
//
// generates ("C" × "penalty"):
//
//	[]map[string]string{
//		{"C": "0.1", "penalty": "l1"},
//		{"C": "0.1", "penalty": "l2"},
//		{"C": "1", "penalty": "l1"},
//		{"C": "1", "penalty": "l2"},
//	}
//
// (in unspecified order)
//
// # args:
//
// - basis : basis of cartesian product.
//
// # returning:
//
// - []map[K]V : Each item has the same keys as basis.
// For each key for each item, the value is one of basis[key].
//
// If any dimension is empty, the whole product is empty.
func MapCartesian[K comparable, V any](basis map[K][]V) []map[K]V {
	dims := len(basis)
	if dims == 0 {
		return []map[K]V{}
	}

	keys := make([]K, 0, dims)
	for k, p := range basis {
		if len(p) == 0 {
			return []map[K]V{}
		}
		keys = append(keys, k)
	}

	var cartesian func(known []map[K]V, rem []K) []map[K]V
	cartesian = func(known []map[K]V, rem []K) []map[K]V {
		if len(rem) <= 0 {
			return known
		}

		topic := rem[0]
		next := []map[K]V{}

		for _, item := range basis[topic] {
			clone := utils.Map(known, mapCopy[K, V])
			for i := range clone {
				clone[i][topic] = item
			}
			next = append(next, clone...)
		}

		return cartesian(next, rem[1:])
	}

	seed := keys[0]
	known := utils.Map(basis[seed], func(item V) map[K]V {
		return map[K]V{seed: item}
	})

	return cartesian(known, keys[1:])
}

func mapCopy[K comparable, V any](base map[K]V) map[K]V {
	ret := make(map[K]V, len(base))
	for k := range base {
		ret[k] = base[k]
	}
	return ret
}
