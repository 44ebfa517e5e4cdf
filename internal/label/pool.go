package label

import "strings"

// #region pool
// Pool is the ordered label collection for one selection request.
type Pool []Label

// Len returns the number of labels.
func (p Pool) Len() int {
	return len(p)
}

// Empty reports whether the pool carries no labels.
func (p Pool) Empty() bool {
	return len(p) == 0
}

// TotalWeight sums the sanitized weights.
func (p Pool) TotalWeight() float64 {
	var sum float64
	for _, l := range p {
		sum += l.EffectiveWeight()
	}
	return sum
}

// AspectCount counts labels that carry an aspect source.
func (p Pool) AspectCount() int {
	n := 0
	for _, l := range p {
		if l.HasAspect() {
			n++
		}
	}
	return n
}

// ByOrigin returns the labels produced by the given origin, preserving order.
func (p Pool) ByOrigin(o Origin) Pool {
	var out Pool
	for _, l := range p {
		if l.Origin == o {
			out = append(out, l)
		}
	}
	return out
}

// With returns a new pool with extra labels appended. The receiver is not modified.
func (p Pool) With(extra ...Label) Pool {
	out := make(Pool, 0, len(p)+len(extra))
	out = append(out, p...)
	return append(out, extra...)
}

// #endregion pool

// #region matching
// ContainsAny reports whether any of the substrings occurs in the normalized
// name at the start of a token. Tokens are separated by '_', so "fiery_drive"
// matches "drive" while "inactive" does not match "active".
func ContainsAny(key string, substrings []string) bool {
	for _, s := range substrings {
		if s != "" && hasTokenPrefix(key, s) {
			return true
		}
	}
	return false
}

func hasTokenPrefix(key, s string) bool {
	for i := 0; i+len(s) <= len(key); {
		j := strings.Index(key[i:], s)
		if j < 0 {
			return false
		}
		j += i
		if j == 0 || key[j-1] == '_' {
			return true
		}
		i = j + 1
	}
	return false
}

// #endregion matching
