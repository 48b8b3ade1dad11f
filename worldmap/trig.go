package worldmap

import "math"

// sincos returns sin and cos of a float32 radian angle. math32 (the pack's
// float32 math library) has no trigonometric functions, so this narrow spot
// uses the standard library's float64 math.Sincos and truncates back down.
func sincos(rad float32) (s, c float32) {
	fs, fc := math.Sincos(float64(rad))
	return float32(fs), float32(fc)
}
