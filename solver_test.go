package chanvese

import (
	"errors"
	"math"
	"testing"
)

func TestSegment_InvalidArguments(t *testing.T) {
	phi := make([]float64, 4)
	f := make([]float64, 4)

	cases := []struct {
		name                        string
		phi, f                      []float64
		width, height, numChannels  int
	}{
		{"nil phi", nil, f, 2, 2, 1},
		{"nil f", phi, nil, 2, 2, 1},
		{"zero width", phi, f, 0, 2, 1},
		{"zero height", phi, f, 2, 0, 1},
		{"zero numChannels", phi, f, 2, 2, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Segment(c.phi, c.f, c.width, c.height, c.numChannels, nil); !errors.Is(err, ErrInvalidArguments) {
				t.Errorf("Segment(%s): err = %v, want ErrInvalidArguments", c.name, err)
			}
		})
	}
}

func TestSegment_DimensionMismatch(t *testing.T) {
	shortPhi := make([]float64, 2)
	f := make([]float64, 4)
	if _, err := Segment(shortPhi, f, 2, 2, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch for undersized phi", err)
	}

	phi := make([]float64, 4)
	shortF := make([]float64, 2)
	if _, err := Segment(phi, shortF, 2, 2, 1, nil); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch for undersized f", err)
	}
}

func TestSegment_ExactIterationCount(t *testing.T) {
	const width, height = 16, 16
	phi := make([]float64, width*height)
	InitPhi(phi, width, height)
	f := twoToneImage(width, height)

	opts := DefaultOptions()
	opts.SetTol(0) // disable early exit; must run exactly MaxIter sweeps
	opts.SetMaxIter(10)

	var calls int
	opts.SetPlotFun(func(state PlotState, iter int, delta float64, c1, c2, phi []float64, width, height, numChannels int, param any) bool {
		if state == PlotRunning {
			calls++
		}
		return true
	}, nil)

	status, err := Segment(phi, f, width, height, 1, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if status != StatusMaxIterExceeded {
		t.Errorf("status = %v, want StatusMaxIterExceeded (Tol=0 disables early exit)", status)
	}
	// One call at iter=0 plus one per completed sweep (1..MaxIter).
	if calls != 11 {
		t.Errorf("PlotFun called %d times at PlotRunning, want 11 (iter 0..10)", calls)
	}
}

func TestSegment_NoOpWhenAllWeightsZero(t *testing.T) {
	const width, height = 8, 8
	phi := make([]float64, width*height)
	InitPhi(phi, width, height)
	original := append([]float64(nil), phi...)
	f := twoToneImage(width, height)

	opts := DefaultOptions()
	opts.SetMu(0)
	opts.SetNu(0)
	opts.SetLambda1(0)
	opts.SetLambda2(0)

	status, err := Segment(phi, f, width, height, 1, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if status != StatusConverged {
		t.Errorf("status = %v, want StatusConverged (update is a no-op with all weights zero)", status)
	}
	for i := range phi {
		if phi[i] != original[i] {
			t.Fatalf("phi[%d] changed from %v to %v with mu=nu=lambda1=lambda2=0", i, original[i], phi[i])
		}
	}
}

func TestSegment_FiniteResult(t *testing.T) {
	const width, height = 24, 24
	phi := make([]float64, width*height)
	InitPhi(phi, width, height)
	f := twoToneImage(width, height)

	opts := DefaultOptions()
	opts.SetMaxIter(30)

	status, err := Segment(phi, f, width, height, 1, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if status != StatusConverged && status != StatusMaxIterExceeded {
		t.Fatalf("status = %v, want a defined Status", status)
	}
	for i, v := range phi {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("phi[%d] = %v, want finite", i, v)
		}
	}
}

func TestSegment_RegionMeansConverge(t *testing.T) {
	const width, height = 20, 20
	phi := make([]float64, width*height)
	InitPhi(phi, width, height)
	f := twoToneImage(width, height) // left half 0.0, right half 1.0

	opts := DefaultOptions()
	opts.SetMu(0.1)
	opts.SetMaxIter(200)

	if _, err := Segment(phi, f, width, height, 1, opts); err != nil {
		t.Fatalf("Segment: %v", err)
	}

	c1 := make([]float64, 1)
	c2 := make([]float64, 1)
	RegionAverages(c1, c2, phi, f, width, height, 1)

	// The two regions' means should end up near the two intensities
	// present in the image, in some assignment.
	lo, hi := math.Min(c1[0], c2[0]), math.Max(c1[0], c2[0])
	if lo > 0.3 || hi < 0.7 {
		t.Errorf("region means (%v, %v) did not separate the two halves of the image", c1[0], c2[0])
	}
}

func TestSegment_AbortViaPlotFun(t *testing.T) {
	const width, height = 10, 10
	phi := make([]float64, width*height)
	InitPhi(phi, width, height)
	f := twoToneImage(width, height)

	opts := DefaultOptions()
	opts.SetMaxIter(500)
	opts.SetPlotFun(func(state PlotState, iter int, delta float64, c1, c2, phi []float64, width, height, numChannels int, param any) bool {
		return iter < 3
	}, nil)

	status, err := Segment(phi, f, width, height, 1, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if status != StatusMaxIterExceeded {
		t.Errorf("status = %v, want StatusMaxIterExceeded on early abort", status)
	}
}

func TestSegment_MultichannelDimensions(t *testing.T) {
	const width, height, numChannels = 6, 6, 3
	phi := make([]float64, width*height)
	InitPhi(phi, width, height)
	f := make([]float64, width*height*numChannels)
	for ch := 0; ch < numChannels; ch++ {
		for i := 0; i < width*height; i++ {
			f[ch*width*height+i] = float64(ch) / float64(numChannels)
		}
	}

	opts := DefaultOptions()
	opts.SetMaxIter(5)
	if _, err := Segment(phi, f, width, height, numChannels, opts); err != nil {
		t.Fatalf("Segment: %v", err)
	}
}

// twoToneImage returns a width*height image with the left half at 0.0 and
// the right half at 1.0.
func twoToneImage(width, height int) []float64 {
	f := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x >= width/2 {
				f[x+width*y] = 1
			}
		}
	}
	return f
}
