// Command chanvese segments an image with the Chan-Vese active contour
// model and writes the segmentation as an animated GIF together with a
// final binary mask.
//
// Usage:
//
//	chanvese [options] input animation [final]
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/deepteams/chanvese"
	"github.com/deepteams/chanvese/internal/gifenc"
	"github.com/deepteams/chanvese/internal/pool"
	"github.com/deepteams/chanvese/internal/quantize"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "chanvese: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("chanvese", flag.ContinueOnError)
	mu := fs.Float64("mu", 0.25, "length penalty")
	nu := fs.Float64("nu", 0, "area penalty")
	lambda1 := fs.Float64("lambda1", 1, "fit weight inside the curve")
	lambda2 := fs.Float64("lambda2", 1, "fit weight outside the curve")
	tol := fs.Float64("tol", 1e-3, "convergence tolerance")
	maxIter := fs.Int("maxiter", 500, "maximum number of iterations")
	dt := fs.Float64("dt", 0.5, "time step")
	iterPerFrame := fs.Int("iterperframe", 10, "iterations per animation frame")
	phi0Path := fs.String("phi0", "", "read initial level set from an image file")
	jpegQuality := fs.Int("jpegquality", 85, "quality for saving JPEG output (0-100)")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: chanvese [options] input animation [final]\n\n"+
			"input is a PNG/JPEG/GIF image file; animation is written as a GIF;\n"+
			"final is written as JPEG for a .jpg/.jpeg name and as PNG otherwise.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("missing input and animation arguments")
	}
	if *iterPerFrame <= 0 {
		return fmt.Errorf("iterations per frame must be positive")
	}
	if *jpegQuality < 0 || *jpegQuality > 100 {
		return fmt.Errorf("JPEG quality must be between 0 and 100")
	}

	inputPath := fs.Arg(0)
	animationPath := fs.Arg(1)
	var finalPath string
	if fs.NArg() >= 3 {
		finalPath = fs.Arg(2)
	}

	f, width, height, numChannels, err := loadImage(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	phi, phiSource, err := loadPhi(*phi0Path, width, height)
	if err != nil {
		return err
	}

	opts := chanvese.DefaultOptions()
	opts.SetMu(*mu)
	opts.SetNu(*nu)
	opts.SetLambda1(*lambda1)
	opts.SetLambda2(*lambda2)
	opts.SetTol(*tol)
	opts.SetMaxIter(*maxIter)
	opts.SetDt(*dt)

	// BuildOverlayFrame reads three channels; repeat a grayscale plane.
	overlayImage := f
	if numChannels == 1 {
		overlayImage = make([]float64, 0, 3*len(f))
		overlayImage = append(overlayImage, f...)
		overlayImage = append(overlayImage, f...)
		overlayImage = append(overlayImage, f...)
	}
	rec := newFrameRecorder(overlayImage, width, height, *iterPerFrame)
	opts.SetPlotFun(rec.plotFun, nil)

	channelDesc := "grayscale"
	if numChannels != 1 {
		channelDesc = "RGB"
	}
	fmt.Println("Segmentation parameters")
	fmt.Printf("f         : [%d x %d %s]\n", width, height, channelDesc)
	fmt.Printf("phi0      : %s\n", phiSource)
	fmt.Println(opts)

	if _, err := chanvese.Segment(phi, f, width, height, numChannels, opts); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}

	c1 := make([]float64, numChannels)
	c2 := make([]float64, numChannels)
	chanvese.RegionAverages(c1, c2, phi, f, width, height, numChannels)

	fmt.Println("\nRegion averages")
	if numChannels == 1 {
		fmt.Printf("c1        : %.4f\nc2        : %.4f\n\n", c1[0], c2[0])
	} else {
		fmt.Printf("c1        : (%.4f, %.4f, %.4f)\nc2        : (%.4f, %.4f, %.4f)\n\n",
			c1[0], c1[1], c1[2], c2[0], c2[1], c2[2])
	}

	if finalPath != "" {
		if err := writeMask(phi, width, height, finalPath, *jpegQuality); err != nil {
			return fmt.Errorf("writing %s: %w", finalPath, err)
		}
	}

	if err := writeAnimation(rec, width, height, animationPath); err != nil {
		return err
	}
	return nil
}

// loadPhi reads the initial level set from path, rescaling it from image
// range [0,1] to [-4,4], or builds the default sinusoidal initial level set
// via chanvese.InitPhi if path is empty.
func loadPhi(path string, width, height int) (phi []float64, source string, err error) {
	if path == "" {
		phi = make([]float64, width*height)
		chanvese.InitPhi(phi, width, height)
		return phi, "default", nil
	}

	data, pw, ph, _, err := loadImage(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading phi0 %s: %w", path, err)
	}
	if pw != width || ph != height {
		return nil, "", fmt.Errorf("size mismatch: phi0 (%dx%d) does not match image size (%dx%d)", pw, ph, width, height)
	}

	// data may have been loaded as RGB if phi0 was given a color image;
	// only its first channel is used as the level set.
	numPixels := width * height
	phi = data[:numPixels]
	for i := range phi {
		phi[i] = 4 * (2*phi[i] - 1)
	}
	return phi, "custom", nil
}

// frameRecorder collects animation frames during segmentation, implementing
// chanvese.PlotFunc. It prints progress to stderr and records one overlay
// frame every iterPerFrame iterations, plus a final frame on termination.
type frameRecorder struct {
	image        []float64
	width        int
	height       int
	iterPerFrame int
	frames       [][]byte
	delays       []int
}

func newFrameRecorder(image []float64, width, height, iterPerFrame int) *frameRecorder {
	return &frameRecorder{image: image, width: width, height: height, iterPerFrame: iterPerFrame}
}

func (r *frameRecorder) plotFun(state chanvese.PlotState, iter int, delta float64, c1, c2, phi []float64, width, height, numChannels int, param any) bool {
	switch state {
	case chanvese.PlotRunning:
		if numChannels == 1 {
			fmt.Fprintf(os.Stderr, "   Iteration %4d     Delta %7.4f     c1 = %6.4f     c2 = %6.4f\r", iter, delta, c1[0], c2[0])
		} else {
			fmt.Fprintf(os.Stderr, "   Iteration %4d     Delta %7.4f\r", iter, delta)
		}
	case chanvese.PlotConverged:
		fmt.Fprintf(os.Stderr, "Converged in %d iterations.                                            \n", iter)
	case chanvese.PlotExhausted:
		fmt.Fprintln(os.Stderr, "Maximum number of iterations exceeded.                                 ")
	}

	if state == chanvese.PlotRunning && iter%r.iterPerFrame != 0 {
		return true
	}

	r.frames = append(r.frames, chanvese.BuildOverlayFrame(phi, r.image, width, height))
	delay := 12
	if state != chanvese.PlotRunning {
		delay = 120
	}
	r.delays = append(r.delays, delay)
	return true
}

// writeAnimation quantizes the recorded frames to a shared 255-color
// palette (reserving index 255 as transparent), optimizes unchanged pixels
// across frames, and writes the result as an animated GIF.
func writeAnimation(rec *frameRecorder, width, height int, outputPath string) error {
	const transparentColor = 255
	numFrames := len(rec.frames)
	numPixels := width * height

	rgb := pool.Get(3 * numPixels * numFrames)
	defer pool.Put(rgb)
	for i, frame := range rec.frames {
		copy(rgb[3*numPixels*i:], frame)
	}

	indices := pool.Get(numPixels * numFrames)
	defer pool.Put(indices)
	quantized := pool.Get(3 * transparentColor)
	defer pool.Put(quantized)
	clear(quantized)
	numColors, err := quantize.Quantize(indices, quantized, transparentColor, rgb, numPixels*numFrames)
	if err != nil {
		return fmt.Errorf("quantizing animation colors: %w", err)
	}

	palette := pool.Get(3 * 256)
	defer pool.Put(palette)
	clear(palette)
	copy(palette, quantized[:3*numColors])

	frames := make([][]byte, numFrames)
	for i := range frames {
		frames[i] = indices[i*numPixels : (i+1)*numPixels]
	}
	if err := gifenc.FrameDifference(frames, transparentColor); err != nil {
		return fmt.Errorf("optimizing animation: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := gifenc.WriteGIF(out, frames, width, height, palette, 256, transparentColor, rec.delays); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("writing animation: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}
	fmt.Printf("Output written to %q.\n", outputPath)
	return nil
}

// writeMask renders phi's binary segmentation mask and writes it as a PNG
// or JPEG image, chosen by the path's extension.
func writeMask(phi []float64, width, height int, path string, jpegQuality int) error {
	mask := chanvese.BuildMask(phi, width, height)
	gray := &image.Gray{Pix: mask, Stride: width, Rect: image.Rect(0, 0, width, height)}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	var encErr error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		encErr = jpeg.Encode(out, gray, &jpeg.Options{Quality: jpegQuality})
	default:
		encErr = png.Encode(out, gray)
	}

	if encErr != nil {
		out.Close()
		os.Remove(path)
		return encErr
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}
	fmt.Printf("Output written to %q.\n", path)
	return nil
}

// loadImage decodes an image file into a channel-planar float64 sample
// array in [0,1], following chanvese.Segment's expected layout. Images
// already in grayscale color models decode to a single channel; anything
// else decodes to 3 (RGB) channels.
func loadImage(path string) (f []float64, width, height, numChannels int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, 0, 0, 0, err
	}

	bounds := img.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	numPixels := width * height

	if isGray(img) {
		f = make([]float64, numPixels)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				f[x+width*y] = float64(r) / 65535
			}
		}
		return f, width, height, 1, nil
	}

	f = make([]float64, 3*numPixels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			n := x + width*y
			f[n] = float64(r) / 65535
			f[n+numPixels] = float64(g) / 65535
			f[n+2*numPixels] = float64(b) / 65535
		}
	}
	return f, width, height, 3, nil
}

func isGray(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	default:
		return false
	}
}
