package layout

import (
	"math"

	"github.com/matzehuels/topoviz/pkg/topology"
)

// Polarfly places each polarfly class on its own ellipse. Vertices of any
// other category are left unpositioned.
type Polarfly struct {
	cfg PolarflyConfig
}

// NewPolarfly creates a polarfly strategy.
func NewPolarfly(cfg PolarflyConfig) *Polarfly { return &Polarfly{cfg: cfg} }

// Variant implements [Strategy].
func (p *Polarfly) Variant() Variant { return VariantPolarfly }

func (p *Polarfly) ellipse(c topology.Category) (Ellipse, bool) {
	switch c {
	case topology.CategoryPolarflyW:
		return p.cfg.W, true
	case topology.CategoryPolarflyV1c:
		return p.cfg.V1c, true
	case topology.CategoryPolarflyV1n:
		return p.cfg.V1n, true
	case topology.CategoryPolarflyV2:
		return p.cfg.V2, true
	}
	return Ellipse{}, false
}

// Place implements [Strategy].
func (p *Polarfly) Place(m *topology.Model, visible []string) Placement {
	ids := visibleIDs(m, visible)
	groups := groupByCategory(m, ids)
	out := Placement{Positions: make(map[string]Position, len(ids))}

	for _, cat := range topology.Categories {
		e, ok := p.ellipse(cat)
		if !ok {
			continue
		}
		members := groups[cat]
		step := 2 * math.Pi / float64(max(1, len(members)))
		for i, id := range members {
			a := p.cfg.StartAngle + float64(i)*step
			out.Positions[id] = Position{
				X: e.RX * math.Cos(a),
				Y: e.CY + e.RY*math.Sin(a),
			}
		}
	}
	return out
}
