// Package eda is the dashboard controller: it turns an analysis selection
// into a View over the cached dataset.
package eda

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapeda/internal/dataset"
)

// ErrInvalidSelection is returned for a mode, column, or plot kind outside
// the fixed option sets.
var ErrInvalidSelection = errors.New("invalid selection")

// Mode is one of the analysis types offered in the sidebar.
type Mode string

// Modes, in the order the selector lists them.
const (
	ModeOverview     Mode = "Dataset Overview"
	ModeSummary      Mode = "Statistical Summary"
	ModeDistribution Mode = "Distribution Plot"
	ModeJoint        Mode = "Joint Plot"
	ModePair         Mode = "Pair Plot"
	ModeBoxen        Mode = "Boxen Plot"
	ModeStrip        Mode = "Strip Plot"
	ModeSwarm        Mode = "Swarm Plot"
)

// Modes lists every mode in display order.
var Modes = []Mode{
	ModeOverview,
	ModeSummary,
	ModeDistribution,
	ModeJoint,
	ModePair,
	ModeBoxen,
	ModeStrip,
	ModeSwarm,
}

// Slug returns the short command-line name of the mode.
func (m Mode) Slug() string {
	switch m {
	case ModeOverview:
		return "overview"
	case ModeSummary:
		return "summary"
	}
	name, _, _ := strings.Cut(string(m), " ")
	return strings.ToLower(name)
}

// ParseMode accepts a display name or slug, case-insensitively. Empty
// input selects the first mode.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Modes[0], nil
	}
	for _, m := range Modes {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, m.Slug()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidSelection, s)
}

// Kind is the joint plot style.
type Kind string

// Joint plot kinds, valued by their short names.
const (
	KindScatter    Kind = "scatter"
	KindRegression Kind = "reg"
	KindHexbin     Kind = "hex"
	KindDensity    Kind = "kde"
)

// Kinds lists every joint plot kind in display order.
var Kinds = []Kind{KindScatter, KindRegression, KindHexbin, KindDensity}

var kindAliases = map[string]Kind{
	"regression": KindRegression,
	"hexbin":     KindHexbin,
	"density":    KindDensity,
}

// Hue reports whether the kind colours points by species.
func (k Kind) Hue() bool {
	return k == KindScatter || k == KindDensity
}

// ParseKind accepts a short name or its long alias. Empty input selects scatter.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindScatter, nil
	}
	if k := Kind(s); slices.Contains(Kinds, k) {
		return k, nil
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown plot kind %q", ErrInvalidSelection, s)
}

// Selection is the closed set of analysis requests, one variant per Mode.
type Selection interface {
	Mode() Mode
	sealed()
}

type (
	// Overview previews the whole table with shape and dtype info.
	Overview struct{}
	// Summary shows descriptive statistics of the numeric columns.
	Summary struct{}
	// Distribution plots one column's histogram and density.
	Distribution struct{ Column string }
	// Joint plots two columns against each other.
	Joint struct {
		X    string
		Y    string
		Kind Kind
	}
	// Pair plots every pair of numeric columns.
	Pair struct{}
	// Boxen plots one column's letter values per species.
	Boxen struct{ Column string }
	// Strip plots one column's jittered points per species.
	Strip struct{ Column string }
	// Swarm plots one column's non-overlapping points per species.
	Swarm struct{ Column string }
)

func (Overview) Mode() Mode     { return ModeOverview }
func (Summary) Mode() Mode      { return ModeSummary }
func (Distribution) Mode() Mode { return ModeDistribution }
func (Joint) Mode() Mode        { return ModeJoint }
func (Pair) Mode() Mode         { return ModePair }
func (Boxen) Mode() Mode        { return ModeBoxen }
func (Strip) Mode() Mode        { return ModeStrip }
func (Swarm) Mode() Mode        { return ModeSwarm }

func (Overview) sealed()     {}
func (Summary) sealed()      {}
func (Distribution) sealed() {}
func (Joint) sealed()        {}
func (Pair) sealed()         {}
func (Boxen) sealed()        {}
func (Strip) sealed()        {}
func (Swarm) sealed()        {}

// Signals is the flat wire form of a Selection, as posted by the dashboard
// controls or given on the command line.
type Signals struct {
	Mode   string `json:"mode"`
	Column string `json:"column"`
	X      string `json:"x"`
	Y      string `json:"y"`
	Kind   string `json:"kind"`
}

// Default sub-selections, matching the initial state of each control.
const (
	DefaultColumn = dataset.SepalLength
	DefaultX      = dataset.SepalLength
	DefaultY      = dataset.SepalWidth
	DefaultKind   = KindScatter
)

// ParseSelection validates sig and builds the variant for its mode. Blank
// fields take the control defaults; fields the mode does not use are ignored.
func ParseSelection(sig Signals) (Selection, error) {
	mode, err := ParseMode(sig.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeOverview:
		return Overview{}, nil
	case ModeSummary:
		return Summary{}, nil
	case ModePair:
		return Pair{}, nil
	case ModeJoint:
		x, err := parseColumn(sig.X, DefaultX)
		if err != nil {
			return nil, err
		}
		y, err := parseColumn(sig.Y, DefaultY)
		if err != nil {
			return nil, err
		}
		kind, err := ParseKind(sig.Kind)
		if err != nil {
			return nil, err
		}
		return Joint{X: x, Y: y, Kind: kind}, nil
	}

	column, err := parseColumn(sig.Column, DefaultColumn)
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeDistribution:
		return Distribution{Column: column}, nil
	case ModeBoxen:
		return Boxen{Column: column}, nil
	case ModeStrip:
		return Strip{Column: column}, nil
	default:
		return Swarm{Column: column}, nil
	}
}

func parseColumn(s, fallback string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	if !slices.Contains(dataset.NumericColumns, s) {
		return "", fmt.Errorf("%w: unknown column %q", ErrInvalidSelection, s)
	}
	return s, nil
}

// SignalsOf returns the wire form of sel with every control populated, so
// a form can be redrawn from it.
func SignalsOf(sel Selection) Signals {
	sig := Signals{
		Mode:   string(sel.Mode()),
		Column: DefaultColumn,
		X:      DefaultX,
		Y:      DefaultY,
		Kind:   string(DefaultKind),
	}
	switch s := sel.(type) {
	case Distribution:
		sig.Column = s.Column
	case Boxen:
		sig.Column = s.Column
	case Strip:
		sig.Column = s.Column
	case Swarm:
		sig.Column = s.Column
	case Joint:
		sig.X, sig.Y, sig.Kind = s.X, s.Y, string(s.Kind)
	}
	return sig
}
