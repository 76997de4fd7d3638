package chanvese

import "math"

// InitPhi fills phi, a width*height level set buffer, with the default
// initial segmentation sin(π·i/5)·sin(π·j/5), which produces a regular
// grid of small alternating-sign patches. Segment does not call it: a
// caller without its own initial guess fills phi with InitPhi before
// calling Segment.
func InitPhi(phi []float64, width, height int) {
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			phi[i+width*j] = math.Sin(float64(i)*math.Pi/5.0) * math.Sin(float64(j)*math.Pi/5.0)
		}
	}
}
