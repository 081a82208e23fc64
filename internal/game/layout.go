package game

import (
	_ "embed"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ringtoss/backend/internal/physics"
)

//go:embed layouts.yaml
var embeddedLayouts []byte

// PegSpec places one peg relative to the tank centre.
type PegSpec struct {
	X         float64 `yaml:"x" json:"x"`
	Z         float64 `yaml:"z" json:"z"`
	Offset    float64 `yaml:"offset" json:"offset"`
	PinHeight float64 `yaml:"pin_height" json:"pin_height"`
	Color     string  `yaml:"color" json:"color"`
}

// ScatterSpec draws peg positions from the session's random source.
type ScatterSpec struct {
	Count      int       `yaml:"count" json:"count"`
	MinX       float64   `yaml:"min_x" json:"min_x"`
	MaxX       float64   `yaml:"max_x" json:"max_x"`
	MinOffset  float64   `yaml:"min_offset" json:"min_offset"`
	MaxOffset  float64   `yaml:"max_offset" json:"max_offset"`
	MinGap     float64   `yaml:"min_gap" json:"min_gap"`
	PinHeights []float64 `yaml:"pin_heights" json:"pin_heights"`
	Colors     []string  `yaml:"colors" json:"colors"`
}

// LayoutPreset is a named peg arrangement.
type LayoutPreset struct {
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	Pegs        []PegSpec    `yaml:"pegs" json:"pegs,omitempty"`
	Scatter     *ScatterSpec `yaml:"scatter" json:"scatter,omitempty"`
}

// LayoutSet is an ordered collection of presets.
type LayoutSet struct {
	order   []string
	presets map[string]LayoutPreset
}

type layoutFile struct {
	Layouts []LayoutPreset `yaml:"layouts"`
}

// LoadLayouts parses a YAML layouts document.
func LoadLayouts(data []byte) (*LayoutSet, error) {
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}
	if len(f.Layouts) == 0 {
		return nil, fmt.Errorf("parse layouts: no layouts defined")
	}

	set := &LayoutSet{presets: make(map[string]LayoutPreset, len(f.Layouts))}
	for _, p := range f.Layouts {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := set.presets[p.Name]; dup {
			return nil, fmt.Errorf("layout %q defined twice", p.Name)
		}
		set.presets[p.Name] = p
		set.order = append(set.order, p.Name)
	}
	return set, nil
}

// LoadLayoutsFile reads presets from disk.
func LoadLayoutsFile(path string) (*LayoutSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layouts: %w", err)
	}
	return LoadLayouts(data)
}

// DefaultLayouts returns the built-in presets.
func DefaultLayouts() *LayoutSet {
	set, err := LoadLayouts(embeddedLayouts)
	if err != nil {
		panic(err)
	}
	return set
}

// Get looks up a preset by name.
func (s *LayoutSet) Get(name string) (LayoutPreset, error) {
	p, ok := s.presets[name]
	if !ok {
		return LayoutPreset{}, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	return p, nil
}

// Names lists presets in file order.
func (s *LayoutSet) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (p LayoutPreset) validate() error {
	if p.Name == "" {
		return fmt.Errorf("layout without a name")
	}
	if len(p.Pegs) == 0 && p.Scatter == nil {
		return fmt.Errorf("layout %q has no pegs", p.Name)
	}
	for i, peg := range p.Pegs {
		if peg.PinHeight <= 0 {
			return fmt.Errorf("layout %q peg %d: pin_height must be positive", p.Name, i)
		}
		if _, err := parseColor(peg.Color); err != nil {
			return fmt.Errorf("layout %q peg %d: %w", p.Name, i, err)
		}
	}
	if sc := p.Scatter; sc != nil {
		if sc.Count <= 0 || sc.MaxX < sc.MinX || sc.MaxOffset < sc.MinOffset || len(sc.PinHeights) == 0 {
			return fmt.Errorf("layout %q: invalid scatter block", p.Name)
		}
		for _, c := range sc.Colors {
			if _, err := parseColor(c); err != nil {
				return fmt.Errorf("layout %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// Build resolves the preset into pegs. Fixed pegs come first, then scattered
// ones drawn from rng.
func (p LayoutPreset) Build(rng *rand.Rand) []*Peg {
	var pegs []*Peg
	for _, spec := range p.Pegs {
		color, _ := parseColor(spec.Color)
		pegs = append(pegs, &Peg{
			ID:        len(pegs) + 1,
			Position:  physics.NewVec3(spec.X, TankCenterY+spec.Offset, spec.Z),
			PinHeight: spec.PinHeight,
			Color:     color,
		})
	}

	sc := p.Scatter
	if sc == nil {
		return pegs
	}
	for i := 0; i < sc.Count; i++ {
		var x float64
		for attempt := 0; attempt < 20; attempt++ {
			x = sc.MinX + rng.Float64()*(sc.MaxX-sc.MinX)
			if !tooClose(pegs, x, sc.MinGap) {
				break
			}
		}
		offset := sc.MinOffset + rng.Float64()*(sc.MaxOffset-sc.MinOffset)
		var color uint32 = 0xffffff
		if len(sc.Colors) > 0 {
			color, _ = parseColor(sc.Colors[i%len(sc.Colors)])
		}
		pegs = append(pegs, &Peg{
			ID:        len(pegs) + 1,
			Position:  physics.NewVec3(x, TankCenterY+offset, 0),
			PinHeight: sc.PinHeights[i%len(sc.PinHeights)],
			Color:     color,
		})
	}
	return pegs
}

func tooClose(pegs []*Peg, x, gap float64) bool {
	for _, p := range pegs {
		d := p.Position.X - x
		if d < 0 {
			d = -d
		}
		if d < gap {
			return true
		}
	}
	return false
}

// parseColor accepts "#rrggbb" or "rrggbb". Empty means white.
func parseColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return 0xffffff, nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return 0, fmt.Errorf("invalid colour %q", s)
	}
	return uint32(v), nil
}
