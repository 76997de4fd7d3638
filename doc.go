// Package chanvese implements Chan–Vese "active contours without edges"
// two-phase image segmentation, extended to multichannel images via the
// Chan–Sandberg–Vese vector formulation.
//
// Given a scalar or vector-valued image f and an initial level set Φ,
// Segment evolves Φ in place by a semi-implicit Gauss–Seidel iteration
// until the curve it implicitly represents settles into a local minimum
// of the Mumford–Shah-like Chan–Vese energy, balancing region homogeneity
// against contour length and enclosed area. The sign of Φ at convergence
// partitions the image into an "inside" region and an "outside" region.
//
// The solver is the computational core of a small pipeline: Segment's
// progress callback is typically used to build RGB overlay frames
// (see BuildOverlayFrame) from intermediate states of Φ, which are then
// quantized (internal/quantize) and assembled into an animated GIF
// (internal/gifenc) showing the contour evolving over the image.
package chanvese
