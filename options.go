package chanvese

import "fmt"

// PlotState reports which phase of Segment invoked a PlotFunc callback.
type PlotState int

const (
	// PlotRunning is reported before the first sweep and after every
	// subsequent sweep while iteration continues.
	PlotRunning PlotState = 0
	// PlotConverged is reported exactly once, when Segment terminates
	// because the RMS update fell below Options.Tol.
	PlotConverged PlotState = 1
	// PlotExhausted is reported exactly once, when Segment terminates
	// because Options.MaxIter sweeps completed without converging, or
	// because a PlotFunc requested early abort.
	PlotExhausted PlotState = 2
)

// Status is the outcome of a completed Segment call.
type Status int

const (
	// StatusConverged means the RMS update fell below Options.Tol before
	// MaxIter sweeps were used.
	StatusConverged Status = 1
	// StatusMaxIterExceeded means MaxIter sweeps completed without
	// converging. This is not an error: Φ holds a valid, usable
	// (if not fully converged) segmentation.
	StatusMaxIterExceeded Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterExceeded:
		return "max iterations exceeded"
	default:
		return fmt.Sprintf("chanvese.Status(%d)", int(s))
	}
}

// PlotFunc is invoked by Segment before the first sweep (state=PlotRunning,
// iter=0), after every completed sweep that does not converge
// (state=PlotRunning, iter=k), and exactly once at termination
// (state=PlotConverged or PlotExhausted).
//
// c1 and c2 are the current per-channel region means; phi is the current
// level set (callers that need to retain a snapshot must copy it, since
// Segment continues to mutate the same backing array). delta is the RMS
// change from the previous sweep; on the first call, before any sweep, it
// is 1000*Tol (1000 when Tol <= 0).
//
// Returning false requests early abort: Segment stops iterating, invokes
// PlotFunc once more with state=PlotExhausted, and returns
// StatusMaxIterExceeded.
type PlotFunc func(state PlotState, iter int, delta float64, c1, c2, phi []float64, width, height, numChannels int, param any) bool

// Options controls the behavior of Segment. The zero value is not valid;
// construct with DefaultOptions and adjust fields or use the Set* methods.
type Options struct {
	// Tol is the convergence tolerance on the per-sweep RMS update of Φ.
	// Segment terminates once the RMS update falls at or below Tol, from
	// the second sweep onward. Tol <= 0 disables early exit, forcing
	// exactly MaxIter sweeps.
	Tol float64

	// MaxIter is the maximum number of Gauss–Seidel sweeps.
	MaxIter int

	// Mu is the length penalty (weight on contour length).
	Mu float64

	// Nu is the area penalty. Positive values penalize the enclosed area;
	// negative values reward it.
	Nu float64

	// Lambda1 is the fit weight for the region where Φ >= 0.
	Lambda1 float64

	// Lambda2 is the fit weight for the region where Φ < 0.
	Lambda2 float64

	// Dt is the timestep of the semi-implicit update.
	Dt float64

	// PlotFun, if non-nil, is invoked as described in the PlotFunc
	// documentation.
	PlotFun PlotFunc

	// PlotParam is passed through unmodified to PlotFun.
	PlotParam any
}

// DefaultOptions returns a new Options populated with the engine's default
// parameters: Tol=1e-3, MaxIter=500, Mu=0.25, Nu=0, Lambda1=1, Lambda2=1,
// Dt=0.5, and no PlotFun.
func DefaultOptions() *Options {
	return &Options{
		Tol:     1e-3,
		MaxIter: 500,
		Mu:      0.25,
		Nu:      0,
		Lambda1: 1,
		Lambda2: 1,
		Dt:      0.5,
	}
}

// SetMu sets the length penalty. A nil receiver is a no-op.
func (o *Options) SetMu(mu float64) {
	if o == nil {
		return
	}
	o.Mu = mu
}

// SetNu sets the area penalty. A nil receiver is a no-op.
func (o *Options) SetNu(nu float64) {
	if o == nil {
		return
	}
	o.Nu = nu
}

// SetLambda1 sets the inside fit weight. A nil receiver is a no-op.
func (o *Options) SetLambda1(lambda1 float64) {
	if o == nil {
		return
	}
	o.Lambda1 = lambda1
}

// SetLambda2 sets the outside fit weight. A nil receiver is a no-op.
func (o *Options) SetLambda2(lambda2 float64) {
	if o == nil {
		return
	}
	o.Lambda2 = lambda2
}

// SetTol sets the convergence tolerance. A nil receiver is a no-op.
func (o *Options) SetTol(tol float64) {
	if o == nil {
		return
	}
	o.Tol = tol
}

// SetDt sets the timestep. A nil receiver is a no-op.
func (o *Options) SetDt(dt float64) {
	if o == nil {
		return
	}
	o.Dt = dt
}

// SetMaxIter sets the maximum number of sweeps. A nil receiver is a no-op.
func (o *Options) SetMaxIter(maxIter int) {
	if o == nil {
		return
	}
	o.MaxIter = maxIter
}

// SetPlotFun sets the progress callback and its opaque parameter.
// A nil receiver is a no-op.
func (o *Options) SetPlotFun(fn PlotFunc, param any) {
	if o == nil {
		return
	}
	o.PlotFun = fn
	o.PlotParam = param
}

// String renders the options in the same field order as the engine's
// startup banner, for logging/debugging.
func (o *Options) String() string {
	if o == nil {
		o = DefaultOptions()
	}
	return fmt.Sprintf(
		"tol       : %g\nmax iter  : %d\nmu        : %g\nnu        : %g\nlambda1   : %g\nlambda2   : %g\ndt        : %g",
		o.Tol, o.MaxIter, o.Mu, o.Nu, o.Lambda1, o.Lambda2, o.Dt)
}
