// Package arith is the arithmetic unit exercised by the probe suite.
//
// Both functions are pure and total over Go's native int. Overflow follows
// the language's two's-complement wraparound.
package arith

// Add returns a + b.
func Add(a, b int) int {
	return a + b
}

// IsEven reports whether v is divisible by 2.
// Go's remainder takes the sign of the dividend, so negative odd values
// yield -1 and are correctly reported as odd.
func IsEven(v int) bool {
	return v%2 == 0
}
