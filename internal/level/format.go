package level

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/sectorsim/internal/core"
)

//go:embed maps/*.yaml
var builtinMaps embed.FS

// YAMLLevel represents the YAML structure for a map file.
type YAMLLevel struct {
	Name    string       `yaml:"name"`
	Sectors []YAMLSector `yaml:"sectors"`
}

// YAMLSector represents a single sector in YAML format.
// Heights are whole map units.
type YAMLSector struct {
	ID         int    `yaml:"id"`
	Tag        int    `yaml:"tag,omitempty"`
	Floor      int    `yaml:"floor"`
	Ceiling    int    `yaml:"ceiling"`
	Light      int    `yaml:"light"`
	FloorPic   string `yaml:"floor_pic,omitempty"`
	CeilingPic string `yaml:"ceiling_pic,omitempty"`
	Special    int    `yaml:"special,omitempty"`
	Neighbors  []int  `yaml:"neighbors,omitempty"`
}

// Parse parses a YAML map file and builds its level.
func Parse(data []byte) (*Level, error) {
	var yl YAMLLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return nil, fmt.Errorf("level: yaml unmarshal: %w", err)
	}
	if len(yl.Sectors) == 0 {
		return nil, fmt.Errorf("level %s: no sectors", yl.Name)
	}

	sectors := make([]Sector, 0, len(yl.Sectors))
	for _, ys := range yl.Sectors {
		s := Sector{
			ID:         SectorID(ys.ID),
			Tag:        ys.Tag,
			Floor:      core.FromInt(ys.Floor),
			Ceiling:    core.FromInt(ys.Ceiling),
			Light:      core.Clamp(ys.Light, 0, 255),
			FloorPic:   ys.FloorPic,
			CeilingPic: ys.CeilingPic,
			Special:    ys.Special,
		}
		for _, n := range ys.Neighbors {
			s.Neighbors = append(s.Neighbors, SectorID(n))
		}
		sectors = append(sectors, s)
	}

	return New(yl.Name, sectors)
}

// Load reads and parses a map file from disk.
func Load(filePath string) (*Level, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("level: reading %s: %w", filePath, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level: parsing %s: %w", filePath, err)
	}
	return l, nil
}

// Builtin loads one of the embedded sample maps by name.
func Builtin(name string) (*Level, error) {
	data, err := builtinMaps.ReadFile(path.Join("maps", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("level: unknown builtin map %q", name)
	}
	return Parse(data)
}

// BuiltinNames lists the embedded maps, sorted.
func BuiltinNames() []string {
	entries, err := builtinMaps.ReadDir("maps")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve loads ref as a builtin map name first, then as a file path.
func Resolve(ref string) (*Level, error) {
	if !strings.ContainsAny(ref, "/\\.") {
		if l, err := Builtin(ref); err == nil {
			return l, nil
		}
	}
	return Load(ref)
}
