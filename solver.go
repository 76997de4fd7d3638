package chanvese

import (
	"fmt"
	"math"
)

// divideEps regularizes the inverse-magnitude terms in the curvature
// coefficients, avoiding division by zero where Φ is locally flat. Tuned
// for float64; a float32 build of this formula would need roughly 1e-8
// instead.
const divideEps = 1e-16

// Segment performs Chan–Vese (or, for numChannels > 1, Chan–Sandberg–Vese)
// two-phase image segmentation, minimizing
//
//	E = μ·Length(C) + ν·Area(inside) + λ1·∫_inside‖f−c1‖² + λ2·∫_outside‖f−c2‖²
//
// over the curve C implicitly represented by the level set phi and the
// per-channel region means c1, c2.
//
// f is a read-only image of width*height*numChannels float64 samples in
// channel-planar order: the sample at (x,y) of channel k is
// f[x+width*(y+height*k)]. phi is a read/write level set of width*height
// samples; its sign indicates the segmentation (phi[x+width*y] >= 0 means
// (x,y) is inside). phi should be initialized before calling Segment,
// either via InitPhi or with a caller-supplied initial guess.
//
// Segment runs a semi-implicit Gauss–Seidel sweep over phi, in fixed
// column-major pixel order, up to opts.MaxIter times, recomputing the
// region means after every sweep and stopping early once the per-sweep
// RMS change in phi falls at or below opts.Tol (opts.Tol <= 0 disables
// early stopping). If opts is nil, DefaultOptions() is used.
//
// Segment returns StatusConverged or StatusMaxIterExceeded on success;
// StatusMaxIterExceeded is not an error, and phi holds a valid (if not
// fully converged) segmentation. A non-nil error (wrapping
// ErrInvalidArguments or ErrDimensionMismatch) indicates invalid
// arguments; it is returned before phi is read or modified.
func Segment(phi, f []float64, width, height, numChannels int, opts *Options) (Status, error) {
	if phi == nil || f == nil || width <= 0 || height <= 0 || numChannels <= 0 {
		return 0, fmt.Errorf("%w: width=%d height=%d numChannels=%d", ErrInvalidArguments, width, height, numChannels)
	}

	numPixels := width * height
	numEl := numPixels * numChannels

	if len(phi) < numPixels {
		return 0, fmt.Errorf("%w: phi has %d elements, need %d", ErrDimensionMismatch, len(phi), numPixels)
	}
	if len(f) < numEl {
		return 0, fmt.Errorf("%w: f has %d elements, need %d", ErrDimensionMismatch, len(f), numEl)
	}

	if opts == nil {
		opts = DefaultOptions()
	}

	c1 := make([]float64, numChannels)
	c2 := make([]float64, numChannels)
	RegionAverages(c1, c2, phi, f, width, height, numChannels)

	tol := opts.Tol
	rms := 1000.0
	if tol > 0 {
		rms = tol * 1000
	}

	if opts.PlotFun != nil && !opts.PlotFun(PlotRunning, 0, rms, c1, c2, phi, width, height, numChannels, opts.PlotParam) {
		opts.PlotFun(PlotExhausted, 0, rms, c1, c2, phi, width, height, numChannels, opts.PlotParam)
		return StatusMaxIterExceeded, nil
	}

	mu, nu, lambda1, lambda2, dt := opts.Mu, opts.Nu, opts.Lambda1, opts.Lambda2, opts.Dt

	status := StatusMaxIterExceeded
	iter := 1
	for ; iter <= opts.MaxIter; iter++ {
		var sumSq float64

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

				delta := dt / (math.Pi * (1 + phi[n]*phi[n]))

				phiX := phi[n+ir] - phi[n]
				phiY := (phi[n+id] - phi[n+iu]) / 2
				idivR := 1 / math.Sqrt(divideEps+phiX*phiX+phiY*phiY)
				phiX = phi[n] - phi[n+il]
				idivL := 1 / math.Sqrt(divideEps+phiX*phiX+phiY*phiY)
				phiX = (phi[n+ir] - phi[n+il]) / 2
				phiY = phi[n+id] - phi[n]
				idivD := 1 / math.Sqrt(divideEps+phiX*phiX+phiY*phiY)
				phiY = phi[n] - phi[n+iu]
				idivU := 1 / math.Sqrt(divideEps+phiX*phiX+phiY*phiY)

				var dist1, dist2 float64
				if numChannels == 1 {
					d1 := f[n] - c1[0]
					d2 := f[n] - c2[0]
					dist1 = d1 * d1
					dist2 = d2 * d2
				} else {
					for ch := 0; ch < numChannels; ch++ {
						fv := f[n+ch*numPixels]
						t1 := fv - c1[ch]
						t2 := fv - c2[ch]
						dist1 += t1 * t1
						dist2 += t2 * t2
					}
				}

				phiLast := phi[n]
				phi[n] = (phiLast + delta*(
					mu*(phi[n+ir]*idivR+phi[n+il]*idivL+phi[n+id]*idivD+phi[n+iu]*idivU)-
						nu-lambda1*dist1+lambda2*dist2)) /
					(1 + delta*mu*(idivR+idivL+idivD+idivU))

				diff := phi[n] - phiLast
				sumSq += diff * diff
			}
		}

		rms = math.Sqrt(sumSq / float64(numEl))
		RegionAverages(c1, c2, phi, f, width, height, numChannels)

		if tol > 0 && iter >= 2 && rms <= tol {
			status = StatusConverged
			break
		}

		if opts.PlotFun != nil && !opts.PlotFun(PlotRunning, iter, rms, c1, c2, phi, width, height, numChannels, opts.PlotParam) {
			status = StatusMaxIterExceeded
			break
		}
	}

	finalIter := iter
	if finalIter > opts.MaxIter {
		finalIter = opts.MaxIter
	}

	if opts.PlotFun != nil {
		state := PlotConverged
		if status == StatusMaxIterExceeded {
			state = PlotExhausted
		}
		opts.PlotFun(state, finalIter, rms, c1, c2, phi, width, height, numChannels, opts.PlotParam)
	}

	return status, nil
}
