// Package intutils provides utilities for working with ints
package intutils

// Min calculates and returns the minimum integer in a list
func Min(ints ...int) int {
	min := ints[0]
	for _, val := range ints {
		if val < min {
			min = val
		}
	}
	return min
}

// Max calculates and returns the maximum int in a list
func Max(ints ...int) int {
	max := ints[0]
	for _, val := range ints {
		if val > max {
			max = val
		}
	}
	return max
}

// Mod returns x modulo m. Unlike the % operator, the result always
// has the sign of m, so Mod(-1, 8) == 7. Mod panics if m == 0.
func Mod(x, m int) int {
	r := x % m
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r
}

// Range returns the ints in [start, stop) in increasing order. If
// stop <= start, an empty slice is returned.
func Range(start, stop int) []int {
	if stop <= start {
		return []int{}
	}
	r := make([]int, stop-start)
	for i := range r {
		r[i] = start + i
	}
	return r
}

// ModRange returns the ints in [start, stop), each taken modulo m
func ModRange(start, stop, m int) []int {
	r := Range(start, stop)
	for i := range r {
		r[i] = Mod(r[i], m)
	}
	return r
}
