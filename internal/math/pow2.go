package math

import "math/bits"

// IsPowerOf2 reports whether n is a positive power of two.
func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FloorPowerOf2 returns the largest power of two not greater than n.
// It returns 0 for n < 1.
func FloorPowerOf2(n int) int {
	if n < 1 {
		return 0
	}

	return 1 << (bits.Len(uint(n)) - 1)
}

// Log2 returns the base-2 logarithm of n (assuming n is a power of 2).
func Log2(n int) int {
	result := 0

	for n > 1 {
		n >>= 1
		result++
	}

	return result
}

// Product returns the product of all factors. The empty product is 1.
func Product(factors []int) int {
	p := 1
	for _, f := range factors {
		p *= f
	}

	return p
}
