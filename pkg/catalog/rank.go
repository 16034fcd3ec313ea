package catalog

import "slices"

// MaxResults is the number of references returned per query.
const MaxResults = 3

// Rank returns a copy of candidates with basic parts ahead of extended ones.
// The catalog's order is preserved within each group.
func Rank(candidates []Candidate) []Candidate {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Basic == b.Basic:
			return 0
		case a.Basic:
			return -1
		default:
			return 1
		}
	})
	return out
}

// Top returns at most n leading candidates.
func Top(candidates []Candidate, n int) []Candidate {
	if n < 0 {
		n = 0
	}
	if len(candidates) > n {
		return candidates[:n]
	}
	return candidates
}

// References formats every candidate as a supplier reference.
// The result is never nil.
func References(candidates []Candidate) []string {
	refs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		refs = append(refs, c.Reference())
	}
	return refs
}

// Select ranks candidates and returns the references of the first
// [MaxResults]. Rows without a part code cannot be ordered and are dropped
// before truncation.
func Select(candidates []Candidate) []string {
	coded := slices.DeleteFunc(slices.Clone(candidates), func(c Candidate) bool {
		return c.Code == ""
	})
	return References(Top(Rank(coded), MaxResults))
}
