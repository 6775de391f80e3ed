package splat

// Permute reorders s in place according to dst, where dst[i] is the
// destination index of the element currently at source index i. It is
// implemented as a cycle decomposition (compute the inverse "pull from"
// map, then walk each cycle moving one temporary out of the way) so it
// touches each element exactly once regardless of how many columns share
// the same dst (spec §4.A: "compute destination-of-source, then for each
// i walk the cycle swapping until fixed").
func Permute[T any](dst []int, s []T) {
	n := len(s)
	if n == 0 {
		return
	}
	src := make([]int, n)
	for i, d := range dst {
		src[d] = i
	}
	visited := make([]bool, n)
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		if src[i] == i {
			visited[i] = true
			continue
		}
		tmp := s[i]
		j := i
		for src[j] != i {
			s[j] = s[src[j]]
			visited[j] = true
			j = src[j]
		}
		s[j] = tmp
		visited[j] = true
	}
}

// Invert returns src such that src[dst[i]] == i for all i.
func Invert(dst []int) []int {
	src := make([]int, len(dst))
	for i, d := range dst {
		src[d] = i
	}
	return src
}
