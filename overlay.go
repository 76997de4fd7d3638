package chanvese

import "math"

// roundClamp maps a real value, nominally in [0,1], to a byte: 0 if < 0,
// 255 if > 1, otherwise round(255*x).
func roundClamp(x float64) byte {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 255
	default:
		return byte(math.Floor(255*x + 0.5))
	}
}

// BuildOverlayFrame renders an RGB frame highlighting the zero-level
// contour of phi over the original image. image holds width*height*3
// float64 samples in channel-planar order (as Segment's f parameter would,
// restricted to 3 channels); the result is an interleaved RGB byte buffer
// of length width*height*3, suitable as one frame of an animation driven
// by Segment's PlotFunc.
//
// Edge pixels are those inside the segmentation (phi >= 0) with at least
// one 4-connected neighbor outside it (phi < 0). An antialiasing weight is
// derived from each pixel's edge membership and that of its neighbors, the
// background is darkened, and the contour is rendered as a blue tint whose
// strength follows that weight.
func BuildOverlayFrame(phi, image []float64, width, height int) []byte {
	numPixels := width * height
	edge := make([]byte, numPixels)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n := x + width*y
			if phi[n] < 0 {
				continue
			}
			onEdge := (x > 0 && phi[n-1] < 0) ||
				(x+1 < width && phi[n+1] < 0) ||
				(y > 0 && phi[n-width] < 0) ||
				(y+1 < height && phi[n+width] < 0)
			if onEdge {
				edge[n] = 1
			}
		}
	}

	plot := make([]byte, 3*numPixels)

	for j := 0; j < height; j++ {
		iu, id := -width, width
		if j == 0 {
			iu = 0
		}
		if j == height-1 {
			id = 0
		}

		for i := 0; i < width; i++ {
			n := i + width*j
			il, ir := -1, 1
			if i == 0 {
				il = 0
			}
			if i == width-1 {
				ir = 0
			}

			red := 0.95 * image[n]
			green := 0.95 * image[n+numPixels]
			blue := 0.95 * image[n+2*numPixels]

			alpha := float64(4*edge[n]+edge[n+ir]+edge[n+il]+edge[n+id]+edge[n+iu]) / 4.0
			if alpha > 1 {
				alpha = 1
			}

			red = (1 - alpha) * red
			green = (1 - alpha) * green
			blue = (1-alpha)*blue + alpha

			plot[3*n+0] = roundClamp(red)
			plot[3*n+1] = roundClamp(green)
			plot[3*n+2] = roundClamp(blue)
		}
	}

	return plot
}

// BuildMask renders the binary segmentation mask of phi: 255 where
// phi >= 0, 0 elsewhere, in the same row-major layout as phi itself.
func BuildMask(phi []float64, width, height int) []byte {
	mask := make([]byte, width*height)
	for i, v := range phi {
		if v >= 0 {
			mask[i] = 255
		}
	}
	return mask
}
