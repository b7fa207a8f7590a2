package pattern

// Bjorklund distributes k onsets as evenly as possible across n steps
// (the Euclidean rhythm algorithm: E(k,n)), returning a boolean slice of
// length n where true marks an onset. Grounded on the standard recursive
// bucket-merging formulation of Bjorklund's algorithm used by most
// Euclidean-rhythm implementations (e.g. the classic E(3,8) = x..x..x.
// tresillo pattern).
func Bjorklund(k, n int) []bool {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		return make([]bool, n)
	}
	if k >= n {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out
	}

	// Start with k groups of [true] and n-k groups of [false], then
	// repeatedly append the smaller set of groups onto the tail of the
	// larger set until fewer than two "remainder" groups are left.
	groups := make([][]bool, 0, n)
	for i := 0; i < k; i++ {
		groups = append(groups, []bool{true})
	}
	remainder := make([][]bool, 0, n-k)
	for i := 0; i < n-k; i++ {
		remainder = append(remainder, []bool{false})
	}

	for len(remainder) > 1 {
		pairCount := len(groups)
		if len(remainder) < pairCount {
			pairCount = len(remainder)
		}
		var merged [][]bool
		for i := 0; i < pairCount; i++ {
			merged = append(merged, append(append([]bool{}, groups[i]...), remainder[i]...))
		}
		var newRemainder [][]bool
		if pairCount < len(groups) {
			newRemainder = append(newRemainder, groups[pairCount:]...)
		}
		if pairCount < len(remainder) {
			newRemainder = append(newRemainder, remainder[pairCount:]...)
		}
		groups = merged
		remainder = newRemainder
	}

	out := make([]bool, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	for _, g := range remainder {
		out = append(out, g...)
	}
	return out
}
