package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/pushgrid/internal/core/grid"
)

var ErrInvalidScenario = errors.New("invalid scenario")

// File is a scenario document: a grid layout and a list of pushes to replay on it.
type File struct {
	Name      string                `yaml:"name"`
	Width     int                   `yaml:"width"`
	Height    int                   `yaml:"height"`
	Floor     string                `yaml:"floor"`
	Floors    map[string]grid.Floor `yaml:"floors"`
	Kinds     map[string]grid.Kind  `yaml:"kinds"`
	Terrain   Terrain               `yaml:"terrain"`
	Occupants []Occupant            `yaml:"occupants"`
	Pushes    []Push                `yaml:"pushes"`
}

// Terrain paints the grid from text rows listed top row first. Every rune of a
// row must appear in Legend.
type Terrain struct {
	Legend map[string]Tile `yaml:"legend"`
	Rows   []string        `yaml:"rows"`
}

type Tile struct {
	Floor string `yaml:"floor"`
	Solid bool   `yaml:"solid"`
}

type Occupant struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Team     string `yaml:"team"`
	X        int    `yaml:"x"`
	Y        int    `yaml:"y"`
	Rotation int    `yaml:"rotation"`
	Dead     bool   `yaml:"dead"`
}

type Push struct {
	Occupant  string `yaml:"occupant"`
	Direction string `yaml:"direction"`
	// Max is the chain budget; 0 uses the configured default.
	Max int `yaml:"max"`
	// Single moves only the named occupant.
	Single bool `yaml:"single"`
	// Expect, when set, is checked against the push outcome.
	Expect *bool `yaml:"expect"`
}

const defaultFloor = "stone"

func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	sc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

func Decode(r io.Reader) (*File, error) {
	var sc File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return &sc, nil
}

// World is a built scenario grid with its occupants indexed by name.
type World struct {
	Grid   *grid.Grid
	ByName map[string]*grid.Occupant
}

// Build creates the grid described by the file.
func (f *File) Build() (*World, error) {
	if f.Width <= 0 || f.Height <= 0 {
		return nil, fmt.Errorf("%w: grid size %dx%d", ErrInvalidScenario, f.Width, f.Height)
	}

	floors := make(map[string]*grid.Floor, len(f.Floors)+1)
	for name, fl := range f.Floors {
		fl := fl
		fl.Name = name
		floors[name] = &fl
	}
	if _, ok := floors[defaultFloor]; !ok {
		floors[defaultFloor] = &grid.Floor{Name: defaultFloor, Placeable: true}
	}
	base := defaultFloor
	if f.Floor != "" {
		base = f.Floor
	}
	baseFloor, ok := floors[base]
	if !ok {
		return nil, fmt.Errorf("%w: unknown floor %q", ErrInvalidScenario, base)
	}

	g := grid.New(f.Width, f.Height, baseFloor)
	if err := f.paint(g, floors); err != nil {
		return nil, err
	}

	kinds := make(map[string]*grid.Kind, len(f.Kinds))
	for name, k := range f.Kinds {
		k := k
		k.Name = name
		if err := k.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
		}
		kinds[name] = &k
	}

	w := &World{Grid: g, ByName: make(map[string]*grid.Occupant, len(f.Occupants))}
	for i, spec := range f.Occupants {
		k, ok := kinds[spec.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: occupant %d has unknown kind %q", ErrInvalidScenario, i, spec.Kind)
		}
		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("%s#%d", spec.Kind, i)
		}
		if _, dup := w.ByName[name]; dup {
			return nil, fmt.Errorf("%w: duplicate occupant %q", ErrInvalidScenario, name)
		}
		o, err := g.Spawn(name, k, grid.Team(spec.Team), grid.P(spec.X, spec.Y), grid.Direction(spec.Rotation))
		if err != nil {
			return nil, fmt.Errorf("%w: occupant %q: %w", ErrInvalidScenario, name, err)
		}
		if spec.Dead {
			g.Kill(o)
		}
		w.ByName[name] = o
	}
	return w, nil
}

func (f *File) paint(g *grid.Grid, floors map[string]*grid.Floor) error {
	if len(f.Terrain.Rows) == 0 {
		return nil
	}
	if len(f.Terrain.Rows) != f.Height {
		return fmt.Errorf("%w: %d terrain rows for height %d", ErrInvalidScenario, len(f.Terrain.Rows), f.Height)
	}
	for i, row := range f.Terrain.Rows {
		runes := []rune(row)
		if len(runes) != f.Width {
			return fmt.Errorf("%w: terrain row %d has %d cells, want %d", ErrInvalidScenario, i, len(runes), f.Width)
		}
		y := f.Height - 1 - i
		for x, r := range runes {
			tile, ok := f.Terrain.Legend[string(r)]
			if !ok {
				return fmt.Errorf("%w: terrain rune %q not in legend", ErrInvalidScenario, r)
			}
			if tile.Floor != "" {
				fl, ok := floors[tile.Floor]
				if !ok {
					return fmt.Errorf("%w: unknown floor %q", ErrInvalidScenario, tile.Floor)
				}
				if err := g.SetFloor(grid.P(x, y), fl); err != nil {
					return err
				}
			}
			if tile.Solid {
				if err := g.SetSolid(grid.P(x, y), true); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Names returns occupant names in sorted order.
func (w *World) Names() []string {
	out := make([]string, 0, len(w.ByName))
	for name := range w.ByName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
