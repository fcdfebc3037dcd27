// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// 32767 keeps +1.0 from overflowing
	return int16(x * 32767.0)
}

// FloatsToPCM16 converts src into dst as 16-bit PCM values stored in ints,
// the layout go-audio buffers use. dst is grown when too small and the
// resized slice is returned.
func FloatsToPCM16(dst []int, src []float32) []int {
	if cap(dst) < len(src) {
		dst = make([]int, len(src))
	}
	dst = dst[:len(src)]

	for i, x := range src {
		dst[i] = int(Float32ToInt16(x))
	}

	return dst
}
