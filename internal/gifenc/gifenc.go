// Package gifenc writes animated GIF89a files from indexed-color frames,
// with LZW compression and frame-difference transparency optimization.
package gifenc

import (
	"bufio"
	"fmt"
	"io"
)

const (
	maxColors = 256
	// defaultDelay is used for a frame when Delays is nil, in centiseconds.
	defaultDelay = 10
)

// WriteGIF writes an animated GIF to w. frames holds one palette-index byte
// slice per frame, each of length width*height in row-major order. palette
// holds 3*numColors interleaved RGB bytes shared by every frame (a global
// color table); transparentColor is the palette index treated as
// transparent by every frame's Graphic Control Extension. delays gives each
// frame's display duration in centiseconds (1/100s); a nil delays uses 10
// (0.1s) for every frame.
//
// WriteGIF always uses the overwrite disposal method: each frame is drawn
// over the previous ones, cropped to the bounding box of its non-transparent
// pixels. Call FrameDifference first to turn unchanged pixels transparent,
// which both shrinks the cropped region and improves LZW compression.
//
// Only the subset of the GIF89a format this package needs is implemented:
// transparency is always enabled, there is no support for local color
// tables, and the background color index is hardcoded to 0.
func WriteGIF(w io.Writer, frames [][]byte, width, height int, palette []byte, numColors, transparentColor int, delays []int) error {
	numPixels := width * height

	if width <= 0 || height <= 0 {
		return fmt.Errorf("gifenc: invalid dimensions %dx%d", width, height)
	}
	if len(frames) == 0 {
		return fmt.Errorf("gifenc: no frames")
	}
	if numColors <= 2 || numColors > maxColors {
		return fmt.Errorf("gifenc: numColors=%d out of range (3-%d)", numColors, maxColors)
	}
	if transparentColor < 0 || transparentColor >= numColors {
		return fmt.Errorf("gifenc: transparentColor=%d out of range [0,%d)", transparentColor, numColors)
	}
	if len(palette) < 3*numColors {
		return fmt.Errorf("gifenc: palette has %d elements, need %d", len(palette), 3*numColors)
	}
	for k, frame := range frames {
		if len(frame) != numPixels {
			return fmt.Errorf("gifenc: frame %d has %d pixels, want %d", k, len(frame), numPixels)
		}
		for _, v := range frame {
			if int(v) >= numColors {
				return fmt.Errorf("gifenc: frame %d has pixel value %d, exceeds %d-color palette", k, v, numColors)
			}
		}
	}
	if delays != nil && len(delays) != len(frames) {
		return fmt.Errorf("gifenc: delays has %d entries, want %d", len(delays), len(frames))
	}

	bw := bufio.NewWriter(w)

	tableSizePow := 1
	for tableSizePow < numColors && tableSizePow < 8 {
		tableSizePow++
	}

	if _, err := bw.WriteString("GIF89a"); err != nil {
		return err
	}
	writeWordLE(bw, uint16(width))
	writeWordLE(bw, uint16(height))
	bw.WriteByte(0xF0 | byte(tableSizePow-1))
	writeWordLE(bw, 0x0000)
	bw.Write(palette[:3*numColors])
	for i := 3 * ((1 << tableSizePow) - numColors); i > 0; i-- {
		bw.WriteByte(0x00)
	}

	if len(frames) > 1 {
		bw.Write([]byte("\x21\xFF\x0BNETSCAPE2.0\x03\x01\xFF\xFF\x00"))
	}

	lzw := newLZWEncoder()

	for k, frame := range frames {
		left, top, fw, fh := cropFrame(frame, width, height, transparentColor)

		delay := defaultDelay
		if delays != nil {
			delay = delays[k]
		}

		writeWordLE(bw, 0xF921)
		writeWordLE(bw, 0x0504)
		writeWordLE(bw, uint16(delay))
		bw.WriteByte(byte(transparentColor))
		writeWordLE(bw, 0x2C00)
		writeWordLE(bw, uint16(left))
		writeWordLE(bw, uint16(top))
		writeWordLE(bw, uint16(fw))
		writeWordLE(bw, uint16(fh))
		bw.WriteByte(0x00)

		if err := lzw.encodeFrame(bw, frame, left, top, fw, fh, width); err != nil {
			return err
		}
	}

	bw.WriteByte(0x3B)
	return bw.Flush()
}

// writeWordLE writes a 16-bit value in little-endian byte order, as
// required by the GIF89a format.
func writeWordLE(w *bufio.Writer, v uint16) {
	w.WriteByte(byte(v & 0xFF))
	w.WriteByte(byte(v >> 8))
}

// cropFrame finds the bounding box of frame's non-transparent pixels. If
// every pixel is transparent, it returns a degenerate 1x1 box at the
// origin, matching the reference encoder's convention for an all-transparent
// frame (GIF requires a non-empty image descriptor).
func cropFrame(frame []byte, width, height int, transparentColor int) (left, top, w, h int) {
	left, top = width, height
	right, bottom := 0, 0

	for y := 0; y < height; y++ {
		row := frame[y*width : (y+1)*width]
		for x, v := range row {
			if int(v) == transparentColor {
				continue
			}
			if x < left {
				left = x
			}
			if x > right {
				right = x
			}
			if y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
		}
	}

	if left == width {
		return 0, 0, 1, 1
	}
	return left, top, right - left + 1, bottom - top + 1
}

// FrameDifference marks pixels transparent wherever they are unchanged from
// the most recent preceding frame with a non-transparent value at that
// position. Frames are modified in place. Combined with WriteGIF's overwrite
// disposal, this lets each frame's GIF data encode only the pixels that
// actually changed.
func FrameDifference(frames [][]byte, transparentColor int) error {
	if len(frames) == 0 {
		return nil
	}
	numPixels := len(frames[0])
	for _, f := range frames {
		if len(f) != numPixels {
			return fmt.Errorf("gifenc: frames have mismatched lengths")
		}
	}

	for frame := len(frames) - 1; frame > 0; frame-- {
		cur := frames[frame]
		for i := 0; i < numPixels; i++ {
			if int(cur[i]) == transparentColor {
				continue
			}
			prevFrame := frame - 1
			for prevFrame >= 0 && int(frames[prevFrame][i]) == transparentColor {
				prevFrame--
			}
			if prevFrame >= 0 && frames[prevFrame][i] == cur[i] {
				cur[i] = byte(transparentColor)
			}
		}
	}
	return nil
}
