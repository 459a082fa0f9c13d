package layout

import (
	"math"

	"github.com/matzehuels/topoviz/pkg/errors"
)

// Config holds the tunables of every strategy. Angles are in radians.
type Config struct {
	Ring         RingConfig         `toml:"ring" json:"ring"`
	Clos         ClosConfig         `toml:"clos" json:"clos"`
	Circle       CircleConfig       `toml:"circle" json:"circle"`
	Polarfly     PolarflyConfig     `toml:"polarfly" json:"polarfly"`
	BreadthFirst BreadthFirstConfig `toml:"breadthfirst" json:"breadthfirst"`
}

// RingConfig configures [Ring].
type RingConfig struct {
	// Radii when at least one igp node is present.
	IGPRadius      float64 `toml:"igp_radius" json:"igp_radius"`
	BGPRadius      float64 `toml:"bgp_radius" json:"bgp_radius"`
	PrefixRadius   float64 `toml:"prefix_radius" json:"prefix_radius"`
	WorkloadRadius float64 `toml:"workload_radius" json:"workload_radius"`

	// Radii without igp nodes; bgp moves inward.
	InnerBGPRadius      float64 `toml:"inner_bgp_radius" json:"inner_bgp_radius"`
	InnerPrefixRadius   float64 `toml:"inner_prefix_radius" json:"inner_prefix_radius"`
	InnerWorkloadRadius float64 `toml:"inner_workload_radius" json:"inner_workload_radius"`

	SplitThreshold int     `toml:"split_threshold" json:"split_threshold"`
	SplitGap       float64 `toml:"split_gap" json:"split_gap"`
	StartAngle     float64 `toml:"start_angle" json:"start_angle"`
	WorkloadStep   float64 `toml:"workload_step" json:"workload_step"`
	WorkloadArc    float64 `toml:"workload_arc" json:"workload_arc"`
}

// ClosConfig configures [Clos].
type ClosConfig struct {
	Height       float64 `toml:"height" json:"height"`
	Spacing      float64 `toml:"spacing" json:"spacing"`
	RowCapacity  int     `toml:"row_capacity" json:"row_capacity"`
	RowGap       float64 `toml:"row_gap" json:"row_gap"`
	LeafBatch    int     `toml:"leaf_batch" json:"leaf_batch"`
	CharWidth    float64 `toml:"char_width" json:"char_width"`
	LabelPadding float64 `toml:"label_padding" json:"label_padding"`
	MinLeafWidth float64 `toml:"min_leaf_width" json:"min_leaf_width"`
}

// CircleConfig configures [Circle].
type CircleConfig struct {
	Radius     float64 `toml:"radius" json:"radius"`
	StartAngle float64 `toml:"start_angle" json:"start_angle"`
	Sweep      float64 `toml:"sweep" json:"sweep"`
}

// Ellipse is one polarfly orbit.
type Ellipse struct {
	RX float64 `toml:"rx" json:"rx"`
	RY float64 `toml:"ry" json:"ry"`
	CY float64 `toml:"cy" json:"cy"`
}

// PolarflyConfig configures [Polarfly].
type PolarflyConfig struct {
	W          Ellipse `toml:"w" json:"w"`
	V1c        Ellipse `toml:"v1c" json:"v1c"`
	V1n        Ellipse `toml:"v1n" json:"v1n"`
	V2         Ellipse `toml:"v2" json:"v2"`
	StartAngle float64 `toml:"start_angle" json:"start_angle"`
}

// BreadthFirstConfig configures [BreadthFirst].
type BreadthFirstConfig struct {
	LevelGap float64 `toml:"level_gap" json:"level_gap"`
	NodeGap  float64 `toml:"node_gap" json:"node_gap"`
}

// DefaultConfig returns the built-in layout constants.
func DefaultConfig() Config {
	return Config{
		Ring: RingConfig{
			IGPRadius:           150,
			BGPRadius:           300,
			PrefixRadius:        450,
			WorkloadRadius:      600,
			InnerBGPRadius:      150,
			InnerPrefixRadius:   350,
			InnerWorkloadRadius: 500,
			SplitThreshold:      12,
			SplitGap:            60,
			StartAngle:          -math.Pi / 2,
			WorkloadStep:        0.08,
			WorkloadArc:         0.35,
		},
		Clos: ClosConfig{
			Height:       800,
			Spacing:      120,
			RowCapacity:  10,
			RowGap:       60,
			LeafBatch:    6,
			CharWidth:    7,
			LabelPadding: 16,
			MinLeafWidth: 40,
		},
		Circle: CircleConfig{
			Radius:     400,
			StartAngle: -math.Pi / 2,
			Sweep:      2 * math.Pi,
		},
		Polarfly: PolarflyConfig{
			W:          Ellipse{RX: 220, RY: 60, CY: -330},
			V1c:        Ellipse{RX: 420, RY: 110, CY: -110},
			V1n:        Ellipse{RX: 420, RY: 110, CY: 110},
			V2:         Ellipse{RX: 300, RY: 80, CY: 330},
			StartAngle: -math.Pi / 2,
		},
		BreadthFirst: BreadthFirstConfig{
			LevelGap: 120,
			NodeGap:  90,
		},
	}
}

// Validate rejects configurations that would collapse distinct tiers or
// rings onto each other.
func (c Config) Validate() error {
	switch {
	case c.Clos.Height <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "clos height must be positive")
	case c.Clos.Spacing <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "clos spacing must be positive")
	case c.Clos.RowCapacity < 1:
		return errors.New(errors.ErrCodeInvalidInput, "clos row capacity must be at least 1")
	case c.Clos.LeafBatch < 1:
		return errors.New(errors.ErrCodeInvalidInput, "clos leaf batch must be at least 1")
	case c.Circle.Radius <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "circle radius must be positive")
	case c.Circle.Sweep <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "circle sweep must be positive")
	case c.Ring.SplitThreshold < 1:
		return errors.New(errors.ErrCodeInvalidInput, "ring split threshold must be at least 1")
	case c.BreadthFirst.LevelGap <= 0 || c.BreadthFirst.NodeGap <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "breadth-first gaps must be positive")
	}
	return nil
}
