package tuning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed tuning.schema.json
var schemaJSON string

// Tuning is the flat knob file for the simulation core. Values of zero fall
// back to defaults when applied.
type Tuning struct {
	TickRateHz  int `yaml:"tick_rate_hz" json:"tick_rate_hz"`
	WorldHeight int `yaml:"world_height" json:"world_height"`
	SeaLevel    int `yaml:"sea_level" json:"sea_level"`

	LoadRadius   int `yaml:"load_radius" json:"load_radius"`
	UnloadMargin int `yaml:"unload_margin" json:"unload_margin"`
	MaxInFlight  int `yaml:"max_inflight_gen" json:"max_inflight_gen"`
	BacklogBoost int `yaml:"backlog_boost" json:"backlog_boost"`
	MeshPerTick  int `yaml:"mesh_per_tick" json:"mesh_per_tick"`

	PathMaxNodes  int  `yaml:"path_max_nodes" json:"path_max_nodes"`
	PathDiagonals bool `yaml:"path_diagonals" json:"path_diagonals"`
}

func Defaults() Tuning {
	return Tuning{
		TickRateHz:    20,
		WorldHeight:   128,
		SeaLevel:      24,
		LoadRadius:    6,
		UnloadMargin:  2,
		MaxInFlight:   8,
		BacklogBoost:  64,
		MeshPerTick:   4,
		PathMaxNodes:  10000,
		PathDiagonals: true,
	}
}

var schema = jsonschema.MustCompileString("tuning.schema.json", schemaJSON)

// Load reads and validates a tuning.yaml. The document is checked against
// the embedded schema before decoding so a malformed knob fails loudly at
// startup instead of silently zeroing.
func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := Validate(raw); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Validate checks a raw YAML document against the tuning schema.
func Validate(raw []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees canonical types.
	jb, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(jb, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}
