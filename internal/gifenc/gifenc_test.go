package gifenc

import (
	"bytes"
	"testing"
)

func solidPalette() []byte {
	return []byte{
		0, 0, 0,
		255, 0, 0,
		0, 255, 0,
		0, 0, 255,
	}
}

func TestWriteGIF_HeaderAndTrailer(t *testing.T) {
	frame := []byte{0, 1, 2, 3}
	var buf bytes.Buffer

	if err := WriteGIF(&buf, [][]byte{frame}, 2, 2, solidPalette(), 4, 0, nil); err != nil {
		t.Fatalf("WriteGIF: %v", err)
	}

	out := buf.Bytes()
	if len(out) < 6 || string(out[:6]) != "GIF89a" {
		t.Fatalf("missing GIF89a header, got %q", out[:min(len(out), 6)])
	}
	if out[len(out)-1] != 0x3B {
		t.Fatalf("missing trailer byte, got 0x%02X", out[len(out)-1])
	}
}

func TestWriteGIF_NetscapeLoopOnlyForMultiFrame(t *testing.T) {
	frame := []byte{0, 1, 2, 3}
	palette := solidPalette()

	var single bytes.Buffer
	if err := WriteGIF(&single, [][]byte{frame}, 2, 2, palette, 4, 0, nil); err != nil {
		t.Fatalf("WriteGIF: %v", err)
	}
	if bytes.Contains(single.Bytes(), []byte("NETSCAPE2.0")) {
		t.Error("single-frame GIF should not contain the Netscape loop extension")
	}

	var multi bytes.Buffer
	if err := WriteGIF(&multi, [][]byte{frame, frame}, 2, 2, palette, 4, 0, nil); err != nil {
		t.Fatalf("WriteGIF: %v", err)
	}
	if !bytes.Contains(multi.Bytes(), []byte("NETSCAPE2.0")) {
		t.Error("multi-frame GIF should contain the Netscape loop extension")
	}
}

func TestWriteGIF_RejectsOutOfRangePixel(t *testing.T) {
	frame := []byte{0, 1, 2, 9}
	var buf bytes.Buffer
	if err := WriteGIF(&buf, [][]byte{frame}, 2, 2, solidPalette(), 4, 0, nil); err == nil {
		t.Error("want error for pixel value exceeding palette size")
	}
}

func TestWriteGIF_RejectsBadTransparentColor(t *testing.T) {
	frame := []byte{0, 1, 2, 3}
	var buf bytes.Buffer
	if err := WriteGIF(&buf, [][]byte{frame}, 2, 2, solidPalette(), 4, 4, nil); err == nil {
		t.Error("want error for transparentColor >= numColors")
	}
}

func TestCropFrame_AllTransparentIsDegenerate(t *testing.T) {
	frame := []byte{0, 0, 0, 0}
	left, top, w, h := cropFrame(frame, 2, 2, 0)
	if left != 0 || top != 0 || w != 1 || h != 1 {
		t.Errorf("cropFrame(all transparent) = (%d,%d,%d,%d), want (0,0,1,1)", left, top, w, h)
	}
}

func TestCropFrame_BoundsNonTransparentPixels(t *testing.T) {
	// 4x4 frame, only (1,1) and (2,2) non-transparent (value 5).
	frame := make([]byte, 16)
	frame[1+4*1] = 5
	frame[2+4*2] = 5

	left, top, w, h := cropFrame(frame, 4, 4, 0)
	if left != 1 || top != 1 || w != 2 || h != 2 {
		t.Errorf("cropFrame = (%d,%d,%d,%d), want (1,1,2,2)", left, top, w, h)
	}
}

func TestFrameDifference_UnchangedPixelsBecomeTransparent(t *testing.T) {
	frames := [][]byte{
		{1, 2, 3, 4},
		{1, 9, 3, 8},
	}
	if err := FrameDifference(frames, 0); err != nil {
		t.Fatalf("FrameDifference: %v", err)
	}
	want := []byte{0, 9, 0, 8}
	if !bytes.Equal(frames[1], want) {
		t.Errorf("frames[1] = %v, want %v", frames[1], want)
	}
	// First frame is never compared against anything earlier.
	if !bytes.Equal(frames[0], []byte{1, 2, 3, 4}) {
		t.Errorf("frames[0] changed: %v", frames[0])
	}
}

func TestFrameDifference_SkipsPastTransparentFrames(t *testing.T) {
	frames := [][]byte{
		{5},
		{0}, // already transparent, should be skipped when searching back
		{5},
	}
	if err := FrameDifference(frames, 0); err != nil {
		t.Fatalf("FrameDifference: %v", err)
	}
	if frames[2][0] != 0 {
		t.Errorf("frames[2][0] = %d, want 0 (matches frames[0] through the transparent frame[1])", frames[2][0])
	}
}

func TestFrameDifference_MismatchedLengths(t *testing.T) {
	frames := [][]byte{{1, 2}, {1}}
	if err := FrameDifference(frames, 0); err == nil {
		t.Error("want error for mismatched frame lengths")
	}
}
