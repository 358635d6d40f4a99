package plot

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
)

// Panel is one rendered chart. A panel with no SVG is an empty grid cell.
type Panel struct {
	SVG    []byte
	Width  int
	Height int
}

// Blank reports whether the panel is an empty cell.
func (p Panel) Blank() bool {
	return len(p.SVG) == 0
}

// Artifact is a finished figure: panels laid out row-major in Columns
// columns. It owns its bytes and outlives the Surface that produced it.
type Artifact struct {
	ID      string
	Title   string
	Columns int
	Panels  []Panel
}

// Size returns the composed figure dimensions in pixels.
func (a *Artifact) Size() (width, height int) {
	cols, rows := a.grid()
	colW, rowH := a.tracks(cols, rows)
	for _, w := range colW {
		width += w
	}
	for _, h := range rowH {
		height += h
	}
	return width, height
}

// SVG composes the panels into a single SVG document. Each panel keeps its
// own coordinate system and is positioned by its grid cell.
func (a *Artifact) SVG() []byte {
	cols, rows := a.grid()
	colW, rowH := a.tracks(cols, rows)
	width, height := a.Size()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	y := 0
	for r := 0; r < rows; r++ {
		x := 0
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i < len(a.Panels) && !a.Panels[i].Blank() {
				p := a.Panels[i]
				attrs := `<svg x="` + strconv.Itoa(x) + `" y="` + strconv.Itoa(y) +
					`" width="` + strconv.Itoa(p.Width) + `" height="` + strconv.Itoa(p.Height) + `" `
				buf.Write(bytes.Replace(p.SVG, []byte("<svg "), []byte(attrs), 1))
			}
			x += colW[c]
		}
		y += rowH[r]
	}
	buf.WriteString("</svg>")
	return buf.Bytes()
}

func (a *Artifact) grid() (cols, rows int) {
	cols = a.Columns
	if cols < 1 {
		cols = 1
	}
	rows = (len(a.Panels) + cols - 1) / cols
	return cols, rows
}

func (a *Artifact) tracks(cols, rows int) (colW, rowH []int) {
	colW = make([]int, cols)
	rowH = make([]int, rows)
	for i, p := range a.Panels {
		r, c := i/cols, i%cols
		colW[c] = max(colW[c], p.Width)
		rowH[r] = max(rowH[r], p.Height)
	}
	return colW, rowH
}

// Surface accumulates rendered panels for one figure. Obtain one from a
// Pool and Release it once its Artifact has been taken.
type Surface struct {
	pool    *Pool
	buf     bytes.Buffer
	panels  []Panel
	columns int
}

// Draw renders c as SVG and appends it as the next panel.
func (s *Surface) Draw(c chart.Chart) error {
	s.buf.Reset()
	if err := c.Render(chart.SVG, &s.buf); err != nil {
		return fmt.Errorf("render %q: %w", c.Title, err)
	}
	svg := make([]byte, s.buf.Len())
	copy(svg, s.buf.Bytes())
	s.panels = append(s.panels, Panel{SVG: svg, Width: c.GetWidth(), Height: c.GetHeight()})
	return nil
}

// Blank appends an empty cell of the given size.
func (s *Surface) Blank(width, height int) {
	s.panels = append(s.panels, Panel{Width: width, Height: height})
}

// SetColumns sets the grid width used by Artifact.
func (s *Surface) SetColumns(n int) {
	s.columns = n
}

// Len returns the number of panels drawn so far.
func (s *Surface) Len() int {
	return len(s.panels)
}

// Artifact copies the drawn panels into a new figure.
func (s *Surface) Artifact(title string) *Artifact {
	panels := make([]Panel, len(s.panels))
	copy(panels, s.panels)
	cols := s.columns
	if cols < 1 {
		cols = 1
	}
	return &Artifact{
		ID:      uuid.NewString(),
		Title:   title,
		Columns: cols,
		Panels:  panels,
	}
}

// Release clears the surface and hands it back to its pool.
func (s *Surface) Release() {
	s.buf.Reset()
	clear(s.panels)
	s.panels = s.panels[:0]
	s.columns = 0
	if s.pool != nil {
		s.pool.put(s)
	}
}

// Pool recycles surfaces and counts acquisitions so that leaks show up
// as a non-zero Outstanding count.
type Pool struct {
	pool     sync.Pool
	acquired atomic.Int64
	released atomic.Int64
}

// NewPool creates an empty surface pool.
func NewPool() *Pool {
	p := &Pool{}
	p.pool.New = func() any { return &Surface{} }
	return p
}

// Acquire returns a clean surface.
func (p *Pool) Acquire() *Surface {
	s := p.pool.Get().(*Surface)
	s.pool = p
	p.acquired.Add(1)
	return s
}

func (p *Pool) put(s *Surface) {
	s.pool = nil
	p.released.Add(1)
	p.pool.Put(s)
}

// Acquired returns how many surfaces have been handed out.
func (p *Pool) Acquired() int64 {
	return p.acquired.Load()
}

// Outstanding returns how many acquired surfaces have not been released.
func (p *Pool) Outstanding() int64 {
	return p.acquired.Load() - p.released.Load()
}
