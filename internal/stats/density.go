package stats

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	// DefaultGridSize is the number of points a density curve is evaluated at.
	DefaultGridSize = 200
	// DefaultCut extends density support this many bandwidths past the data.
	DefaultCut = 3.0
)

// Curve is a function sampled on a grid.
type Curve struct {
	X []float64
	Y []float64
}

// Max returns the largest Y value of the curve.
func (c Curve) Max() float64 {
	m, err := stats.Max(c.Y)
	if err != nil {
		return 0
	}
	return m
}

// Scale returns a copy of the curve with Y multiplied by f.
func (c Curve) Scale(f float64) Curve {
	y := make([]float64, len(c.Y))
	for i, v := range c.Y {
		y[i] = v * f
	}
	x := make([]float64, len(c.X))
	copy(x, c.X)
	return Curve{X: x, Y: y}
}

// ScottBandwidth is the Gaussian kernel bandwidth rule used by scipy's
// gaussian_kde: sample standard deviation times n^(-1/5).
func ScottBandwidth(values []float64) float64 {
	if len(values) < 2 {
		return 1
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil || sd == 0 {
		return 1
	}
	return sd * math.Pow(float64(len(values)), -0.2)
}

// KDE evaluates a Gaussian kernel density estimate of values on gridSize
// evenly spaced points spanning the data range extended by cut bandwidths.
func KDE(values []float64, gridSize int, cut float64) (Curve, error) {
	data := dropNaN(values)
	if len(data) == 0 {
		return Curve{}, ErrEmpty
	}
	if gridSize < 2 {
		gridSize = DefaultGridSize
	}
	bw := ScottBandwidth(data)
	lo, hi, err := Extent(data)
	if err != nil {
		return Curve{}, err
	}
	grid := Linspace(lo-cut*bw, hi+cut*bw, gridSize)

	ys := make([]float64, len(grid))
	for i, x := range grid {
		ys[i] = gaussianSum(data, x, bw) / float64(len(data))
	}
	return Curve{X: grid, Y: ys}, nil
}

func gaussianSum(data []float64, x, bw float64) float64 {
	sum := 0.0
	for _, v := range data {
		z := (x - v) / bw
		sum += math.Exp(-0.5*z*z) / (bw * math.Sqrt(2*math.Pi))
	}
	return sum
}

// Surface is a function of two variables sampled on a regular grid.
// Z[i][j] is the value at (X[j], Y[i]).
type Surface struct {
	X []float64
	Y []float64
	Z [][]float64
}

// Max returns the largest Z value of the surface.
func (s Surface) Max() float64 {
	m := 0.0
	for _, row := range s.Z {
		for _, v := range row {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// KDE2D evaluates a product Gaussian kernel density of the (xs, ys) pairs
// on a gridSize x gridSize grid over the given bounds.
func KDE2D(xs, ys []float64, gridSize int, xlo, xhi, ylo, yhi float64) (Surface, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return Surface{}, ErrEmpty
	}
	if gridSize < 2 {
		gridSize = 50
	}
	bx := ScottBandwidth(xs)
	by := ScottBandwidth(ys)
	gx := Linspace(xlo, xhi, gridSize)
	gy := Linspace(ylo, yhi, gridSize)
	norm := 1 / (float64(len(xs)) * 2 * math.Pi * bx * by)

	z := make([][]float64, len(gy))
	for i, y := range gy {
		z[i] = make([]float64, len(gx))
		for j, x := range gx {
			sum := 0.0
			for k := range xs {
				dx := (x - xs[k]) / bx
				dy := (y - ys[k]) / by
				sum += math.Exp(-0.5 * (dx*dx + dy*dy))
			}
			z[i][j] = sum * norm
		}
	}
	return Surface{X: gx, Y: gy, Z: z}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// Width returns the bin width.
func (b Bin) Width() float64 {
	return b.Hi - b.Lo
}

// Bins buckets values with numpy's "auto" rule: the smaller of the
// Sturges and Freedman-Diaconis bin widths. The last bin is closed.
func Bins(values []float64) ([]Bin, error) {
	data := dropNaN(values)
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	lo, hi, err := Extent(data)
	if err != nil {
		return nil, err
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	n := BinCount(data, lo, hi)
	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	bins[n-1].Hi = hi

	for _, v := range data {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}
	return bins, nil
}

// BinCount returns the number of bins the "auto" rule picks for data on [lo, hi].
func BinCount(data []float64, lo, hi float64) int {
	span := hi - lo
	n := float64(len(data))
	sturges := span / (math.Log2(n) + 1)

	width := sturges
	sorted := Sorted(data)
	iqr := Quantile(sorted, 0.75) - Quantile(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3); fd > 0 && fd < sturges {
		width = fd
	}
	if width <= 0 {
		return 1
	}
	count := int(math.Ceil(span / width))
	if count < 1 {
		count = 1
	}
	return count
}
