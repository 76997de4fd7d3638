// Package quantize implements median-cut color quantization: reducing an
// RGB pixel stream to a palette of at most 256 colors and assigning each
// pixel to its nearest palette entry.
package quantize

import (
	"fmt"
	"math"

	"github.com/deepteams/chanvese/internal/pool"
)

// maxColors is the largest palette this quantizer can produce, and the
// fixed capacity of the box pool below.
const maxColors = 256

// box is an axis-aligned bounding box in RGB space, tracking the pixels it
// contains. Min/Max are inclusive per-channel bounds.
type box struct {
	min, max  [3]int
	sum       [3]float64 // accumulated RGB sum, valid after finalization
	numPixels int64
	volume    int64
}

func (b *box) computeVolume() {
	b.volume = int64(b.max[0]-b.min[0]+1) * int64(b.max[1]-b.min[1]+1) * int64(b.max[2]-b.min[2]+1)
}

func (b *box) contains(rgb []byte, i int) bool {
	return b.min[0] <= int(rgb[i]) && int(rgb[i]) <= b.max[0] &&
		b.min[1] <= int(rgb[i+1]) && int(rgb[i+1]) <= b.max[1] &&
		b.min[2] <= int(rgb[i+2]) && int(rgb[i+2]) <= b.max[2]
}

// Quantize reduces the RGB pixel stream rgb (3*numPixels bytes, interleaved
// RGB per pixel) to a palette of at most numColors entries, writing the
// index of each pixel's assigned palette entry into dest (numPixels bytes)
// and the palette itself into palette (must have room for 3*numColors
// bytes). It returns the number of palette entries actually produced,
// which may be less than numColors if box splitting runs out of boxes
// with enough volume to split before reaching numColors.
//
// Quantization proceeds by median cut: starting from a single box
// containing every pixel, boxes are repeatedly split along their longest
// axis at the population median until numColors boxes exist (or no box
// has volume > 2 left to split), then every pixel is assigned to the
// index of its nearest palette entry by squared Euclidean RGB distance.
func Quantize(dest, palette []byte, numColors int, rgb []byte, numPixels int) (int, error) {
	if dest == nil || palette == nil || rgb == nil {
		return 0, fmt.Errorf("quantize: nil buffer")
	}
	if numColors <= 0 || numColors > maxColors {
		return 0, fmt.Errorf("quantize: numColors=%d out of range (1-%d)", numColors, maxColors)
	}
	if numPixels <= 0 {
		return 0, fmt.Errorf("quantize: numPixels=%d must be positive", numPixels)
	}
	if len(dest) < numPixels {
		return 0, fmt.Errorf("quantize: dest has %d elements, need %d", len(dest), numPixels)
	}
	if len(rgb) < 3*numPixels {
		return 0, fmt.Errorf("quantize: rgb has %d elements, need %d", len(rgb), 3*numPixels)
	}
	if len(palette) < 3*numColors {
		return 0, fmt.Errorf("quantize: palette has %d elements, need %d", len(palette), 3*numColors)
	}

	var boxes [maxColors]box
	boxes[0].min = [3]int{255, 255, 255}
	boxes[0].max = [3]int{0, 0, 0}

	for i := 0; i < 3*numPixels; i += 3 {
		for ch := 0; ch < 3; ch++ {
			v := int(rgb[i+ch])
			if v < boxes[0].min[ch] {
				boxes[0].min[ch] = v
			}
			if v > boxes[0].max[ch] {
				boxes[0].max[ch] = v
			}
		}
	}
	boxes[0].numPixels = int64(numPixels)
	boxes[0].computeVolume()

	numBoxes := 1
	for numBoxes < numColors {
		best := -1
		var bestMerit float64

		if numBoxes%4 != 0 {
			for k := 0; k < numBoxes; k++ {
				if boxes[k].volume > 2 {
					merit := float64(boxes[k].numPixels)
					if merit > bestMerit {
						bestMerit = merit
						best = k
					}
				}
			}
		} else {
			for k := 0; k < numBoxes; k++ {
				if boxes[k].volume > 2 {
					merit := float64(boxes[k].numPixels) * float64(boxes[k].volume)
					if merit > bestMerit {
						bestMerit = merit
						best = k
					}
				}
			}
		}

		if best < 0 {
			// No box has enough volume left to split further; the
			// palette will have fewer than numColors entries.
			break
		}

		medianSplit(&boxes[numBoxes], &boxes[best], rgb, numPixels)
		numBoxes++
	}

	for k := 0; k < numBoxes; k++ {
		boxes[k].sum = [3]float64{}
		boxes[k].numPixels = 0
	}

	for i := 0; i < 3*numPixels; i += 3 {
		k := 0
		for ; k < numBoxes; k++ {
			if boxes[k].contains(rgb, i) {
				break
			}
		}
		if k == numBoxes {
			// A pixel fell in no box, typically a rounding edge case at
			// a box boundary. Assign it to box 0, matching the reference
			// quantizer's fallback (without the stderr warning it
			// emits, since this is a library function, not a CLI).
			k = 0
		}
		boxes[k].sum[0] += float64(rgb[i])
		boxes[k].sum[1] += float64(rgb[i+1])
		boxes[k].sum[2] += float64(rgb[i+2])
		boxes[k].numPixels++
	}

	for k := 0; k < numBoxes; k++ {
		for ch := 0; ch < 3; ch++ {
			var c byte
			if boxes[k].numPixels > 0 {
				avg := boxes[k].sum[ch] / float64(boxes[k].numPixels)
				switch {
				case avg < 0.5:
					c = 0
				case avg >= 254.5:
					c = 255
				default:
					c = byte(avg + 0.5)
				}
			}
			palette[3*k+ch] = c
		}
	}

	for i, p := 0, 0; i < 3*numPixels; i, p = i+3, p+1 {
		best := 0
		minDist := math.MaxInt
		for k := 0; k < numBoxes; k++ {
			d0 := int(rgb[i]) - int(palette[3*k])
			d1 := int(rgb[i+1]) - int(palette[3*k+1])
			d2 := int(rgb[i+2]) - int(palette[3*k+2])
			dist := d0*d0 + d1*d1 + d2*d2
			if dist < minDist {
				minDist = dist
				best = k
			}
		}
		dest[p] = byte(best)
	}

	return numBoxes, nil
}

// medianSplit splits splitBox along its longest axis at the population
// median, writing the lower partition into newBox and shrinking splitBox
// to the upper partition in place.
func medianSplit(newBox, splitBox *box, rgb []byte, numPixels int) {
	maxDim, maxLength := 0, 0
	for d := 0; d < 3; d++ {
		length := splitBox.max[d] - splitBox.min[d] + 1
		if length > maxLength {
			maxLength = length
			maxDim = d
		}
	}

	hist := pool.GetInt32(256)
	defer pool.PutInt32(hist)

	for i := 0; i < 3*numPixels; i += 3 {
		if splitBox.contains(rgb, i) {
			hist[rgb[i+maxDim]]++
		}
	}

	i := splitBox.min[maxDim]
	accum := int64(hist[i])

	for 2*accum < splitBox.numPixels && i < 254 {
		i++
		accum += int64(hist[i])
	}

	// Adjust so the median bin is included with the larger partition.
	if i > splitBox.min[maxDim] && (i-splitBox.min[maxDim]) < (splitBox.max[maxDim]-i-1) {
		accum -= int64(hist[i])
		i--
	}

	// Ensure both partitions are non-empty. The reference implementation's
	// "for(; i >= Box.Max[MaxDim]; i--)" loop can run past Box.Min for
	// degenerate (near-unit-length) boxes; keep i within [Min, Max-1]
	// instead of reproducing that underflow.
	for i >= splitBox.max[maxDim] && i > splitBox.min[maxDim] {
		accum -= int64(hist[i])
		i--
	}
	if i < splitBox.min[maxDim] {
		i = splitBox.min[maxDim]
	}

	*newBox = *splitBox
	newBox.max[maxDim] = i
	newBox.numPixels = accum
	newBox.computeVolume()

	splitBox.min[maxDim] = i + 1
	splitBox.numPixels -= accum
	splitBox.computeVolume()
}
