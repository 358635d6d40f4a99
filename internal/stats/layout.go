package stats

import (
	"math"
	"math/rand/v2"
	"sort"
)

// LetterBox is one nested box of a letter-value plot.
type LetterBox struct {
	Depth int
	Lo    float64
	Hi    float64
}

// LetterValues is the geometry of a boxen plot for one group.
type LetterValues struct {
	Median   float64
	Boxes    []LetterBox
	Outliers []float64
}

// TukeyDepth returns the number of letter-value boxes for n observations:
// floor(log2 n) - 3, at least one.
func TukeyDepth(n int) int {
	if n < 1 {
		return 1
	}
	k := int(math.Floor(math.Log2(float64(n)))) - 3
	if k < 1 {
		k = 1
	}
	return k
}

// ComputeLetterValues builds the nested quantile boxes of values, widest
// first. Box i spans the 0.5^(i+1) and 1-0.5^(i+1) quantiles; observations
// outside the outermost box are outliers.
func ComputeLetterValues(values []float64) (LetterValues, error) {
	data := dropNaN(values)
	if len(data) == 0 {
		return LetterValues{}, ErrEmpty
	}
	sorted := Sorted(data)
	k := TukeyDepth(len(sorted))

	lv := LetterValues{Median: Quantile(sorted, 0.5)}
	for i := 1; i <= k; i++ {
		p := math.Pow(0.5, float64(i+1))
		lv.Boxes = append(lv.Boxes, LetterBox{
			Depth: i,
			Lo:    Quantile(sorted, p),
			Hi:    Quantile(sorted, 1-p),
		})
	}

	outer := lv.Boxes[len(lv.Boxes)-1]
	for _, v := range sorted {
		if v < outer.Lo || v > outer.Hi {
			lv.Outliers = append(lv.Outliers, v)
		}
	}
	return lv, nil
}

// Hex is one populated cell of a hexagonal binning.
type Hex struct {
	X     float64
	Y     float64
	Count int
}

// HexGrid is the result of a hexagonal binning. Width and Height are the
// lattice spacings in data units.
type HexGrid struct {
	Cells  []Hex
	Width  float64
	Height float64
}

// MaxCount returns the largest cell count.
func (g HexGrid) MaxCount() int {
	m := 0
	for _, c := range g.Cells {
		if c.Count > m {
			m = c.Count
		}
	}
	return m
}

// HexBin counts (xs, ys) pairs into a pointy hexagonal lattice with
// gridSize cells across the x range, the way matplotlib's hexbin lays out
// its two offset rectangular grids. Cells are returned sorted by position.
func HexBin(xs, ys []float64, gridSize int) (HexGrid, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return HexGrid{}, ErrEmpty
	}
	if gridSize < 1 {
		gridSize = 20
	}
	xlo, xhi, err := Extent(xs)
	if err != nil {
		return HexGrid{}, err
	}
	ylo, yhi, err := Extent(ys)
	if err != nil {
		return HexGrid{}, err
	}
	if xhi == xlo {
		xhi = xlo + 1
	}
	if yhi == ylo {
		yhi = ylo + 1
	}

	nx := float64(gridSize)
	ny := math.Max(1, math.Floor(nx/math.Sqrt(3)))
	sx := (xhi - xlo) / nx
	sy := (yhi - ylo) / ny

	type key struct{ x, y float64 }
	counts := make(map[key]int)
	for i := range xs {
		ix := (xs[i] - xlo) / sx
		iy := (ys[i] - ylo) / sy

		ix1, iy1 := math.Round(ix), math.Round(iy)
		ix2, iy2 := math.Floor(ix), math.Floor(iy)
		d1 := (ix-ix1)*(ix-ix1) + 3*(iy-iy1)*(iy-iy1)
		d2 := (ix-ix2-0.5)*(ix-ix2-0.5) + 3*(iy-iy2-0.5)*(iy-iy2-0.5)

		var k key
		if d1 < d2 {
			k = key{xlo + ix1*sx, ylo + iy1*sy}
		} else {
			k = key{xlo + (ix2+0.5)*sx, ylo + (iy2+0.5)*sy}
		}
		counts[k]++
	}

	out := make([]Hex, 0, len(counts))
	for k, c := range counts {
		out = append(out, Hex{X: k.x, Y: k.y, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return HexGrid{Cells: out, Width: sx, Height: sy}, nil
}

// Jitter returns n deterministic offsets drawn uniformly from [-width, width].
func Jitter(n int, width float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * width
	}
	return out
}

// Swarm computes horizontal offsets, in pixels, that keep markers of the
// given diameter from overlapping. Values are placed in ascending order;
// each takes the candidate position closest to the centre line that
// clears every marker already placed. yScale converts data units to pixels.
func Swarm(values []float64, yScale, diameter float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	offsets := make([]float64, len(values))
	var done []point
	for _, idx := range order {
		y := values[idx] * yScale

		var neighbours []point
		for _, p := range done {
			if math.Abs(p.y-y) < diameter {
				neighbours = append(neighbours, p)
			}
		}

		candidates := []float64{0}
		for _, p := range neighbours {
			dy := p.y - y
			dx := math.Sqrt(diameter*diameter - dy*dy)
			candidates = append(candidates, p.x+dx, p.x-dx)
		}
		sort.Slice(candidates, func(a, b int) bool {
			return math.Abs(candidates[a]) < math.Abs(candidates[b])
		})

		x := candidates[len(candidates)-1]
		for _, c := range candidates {
			if fits(c, y, neighbours, diameter) {
				x = c
				break
			}
		}
		offsets[idx] = x
		done = append(done, point{x: x, y: y})
	}
	return offsets
}

type point struct {
	x, y float64
}

func fits(x, y float64, neighbours []point, diameter float64) bool {
	const eps = 1e-9
	for _, p := range neighbours {
		dx, dy := p.x-x, p.y-y
		if dx*dx+dy*dy < diameter*diameter-eps {
			return false
		}
	}
	return true
}
