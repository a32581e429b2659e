package solver

import (
	"errors"
	"fmt"
)

// ErrConfiguration marks invalid population/capacity input. It is reported
// before any clustering or search is attempted.
var ErrConfiguration = errors.New("invalid configuration")

// GroupCount derives the number of groups needed to seat n people at
// capacity m per group: k = ceil(n/m) by Euclidean division. The extra
// partial group absorbs any remainder, so groups may hold fewer than m
// people but never more. m >= n collapses to the degenerate single group.
func GroupCount(n, m int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: population size must be at least 1, got %d", ErrConfiguration, n)
	}
	if m < 1 {
		return 0, fmt.Errorf("%w: group capacity must be at least 1, got %d", ErrConfiguration, m)
	}
	if m >= n {
		return 1, nil
	}
	k := n / m
	if n%m != 0 {
		k++
	}
	return k, nil
}
