// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate performs Catmull-Rom interpolation between y1 and y2.
// x is the fractional position (0 <= x <= 1); y0 and y3 are the outer
// neighbours.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}

// Lerp returns a + t*(b-a). t == 1 yields exactly b.
func Lerp(a, b, t float32) float32 {
	if t >= 1 {
		return b
	}
	return a + t*(b-a)
}

// InRange reports whether lo <= x <= hi.
func InRange(x, lo, hi float32) bool {
	return x >= lo && x <= hi
}
