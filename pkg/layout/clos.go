package layout

import (
	"math"
	"slices"

	"github.com/mattn/go-runewidth"

	"github.com/matzehuels/topoviz/pkg/topology"
)

// Clos places vertices in horizontal bands, one per tier ordinal.
//
// The band of ordinal o sits at (o-min)/(max-min)*Height, where min and max
// range over the tiers actually present. Fabric tiers are centered rows at
// a fixed spacing; a tier with more than RowCapacity vertices wraps into a
// second row shifted by half a spacing. Leaf tiers (dc-prefix, dc-workload)
// are grouped under their parent, the first neighbor with a lower ordinal,
// in batches of LeafBatch. Each leaf reserves width for its label and each
// batch is centered on the parent. Extra rows always stay above the next
// band, so a lower ordinal is always strictly higher on the canvas.
//
// Vertices without a known tier are hidden while any other visible vertex
// has one. If none has, nothing is placed.
type Clos struct {
	cfg ClosConfig
}

// NewClos creates a tiered Clos strategy.
func NewClos(cfg ClosConfig) *Clos { return &Clos{cfg: cfg} }

// Variant implements [Strategy].
func (c *Clos) Variant() Variant { return VariantClos }

// Place implements [Strategy].
func (c *Clos) Place(m *topology.Model, visible []string) Placement {
	ids := visibleIDs(m, visible)
	out := Placement{Positions: make(map[string]Position, len(ids))}

	tiers := make(map[int][]string)
	ordinal := make(map[string]int, len(ids))
	var untiered []string
	for _, id := range ids {
		v, _ := m.Vertex(id)
		ord, ok := v.TierOrdinal()
		if !ok {
			untiered = append(untiered, id)
			continue
		}
		ordinal[id] = ord
		tiers[ord] = append(tiers[ord], id)
	}
	if len(tiers) == 0 {
		return out
	}
	out.Hidden = untiered

	present := make([]int, 0, len(tiers))
	for ord := range tiers {
		present = append(present, ord)
	}
	slices.Sort(present)

	lo, hi := present[0], present[len(present)-1]
	bandY := func(ord int) float64 {
		if hi == lo {
			return 0
		}
		return float64(ord-lo) / float64(hi-lo) * c.cfg.Height
	}

	for i, ord := range present {
		y := bandY(ord)
		band := math.Inf(1)
		if i+1 < len(present) {
			band = bandY(present[i+1]) - y
		}
		members := tiers[ord]
		if topology.IsLeafTier(topology.Tiers[ord]) {
			c.placeLeaves(m, out, members, ordinal, y, band)
		} else {
			c.placeFabric(out, members, y, band)
		}
	}
	return out
}

// rowGap returns the vertical distance between rows of one tier, kept
// small enough that every row stays strictly inside the band.
func (c *Clos) rowGap(rows int, band float64) float64 {
	if rows <= 1 {
		return 0
	}
	return math.Min(c.cfg.RowGap, band/float64(rows))
}

func (c *Clos) placeFabric(out Placement, members []string, y, band float64) {
	if len(members) <= c.cfg.RowCapacity {
		c.row(out, members, 0, y)
		return
	}
	split := (len(members) + 1) / 2
	c.row(out, members[:split], 0, y)
	c.row(out, members[split:], c.cfg.Spacing/2, y+c.rowGap(2, band))
}

// row centers ids around x=offset at a fixed spacing.
func (c *Clos) row(out Placement, ids []string, offset, y float64) {
	mid := float64(len(ids)-1) / 2
	for i, id := range ids {
		out.Positions[id] = Position{X: offset + (float64(i)-mid)*c.cfg.Spacing, Y: y}
	}
}

func (c *Clos) placeLeaves(m *topology.Model, out Placement, members []string, ordinal map[string]int, y, band float64) {
	var parents []string
	children := make(map[string][]string)
	for _, id := range members {
		p := c.parent(m, id, ordinal, out)
		if _, seen := children[p]; !seen {
			parents = append(parents, p)
		}
		children[p] = append(children[p], id)
	}

	rows := 1
	for _, p := range parents {
		rows = max(rows, (len(children[p])+c.cfg.LeafBatch-1)/c.cfg.LeafBatch)
	}
	gap := c.rowGap(rows, band)

	for _, p := range parents {
		cx := 0.0
		if pos, ok := out.Positions[p]; ok {
			cx = pos.X
		}
		kids := children[p]
		for b := 0; b*c.cfg.LeafBatch < len(kids); b++ {
			end := min(len(kids), (b+1)*c.cfg.LeafBatch)
			c.batch(m, out, kids[b*c.cfg.LeafBatch:end], cx, y+float64(b)*gap)
		}
	}
}

// parent returns the first already placed neighbor with a lower ordinal, or
// "" for orphans, which are centered on x=0.
func (c *Clos) parent(m *topology.Model, id string, ordinal map[string]int, out Placement) string {
	own := ordinal[id]
	for _, n := range m.Neighbors(id) {
		ord, ok := ordinal[n]
		if !ok || ord >= own {
			continue
		}
		if _, placed := out.Positions[n]; placed {
			return n
		}
	}
	return ""
}

// batch lays ids out left to right, each reserving its label width, with
// the whole batch centered on cx.
func (c *Clos) batch(m *topology.Model, out Placement, ids []string, cx, y float64) {
	widths := make([]float64, len(ids))
	total := 0.0
	for i, id := range ids {
		v, _ := m.Vertex(id)
		widths[i] = c.labelWidth(v.Label)
		total += widths[i]
	}
	x := cx - total/2
	for i, id := range ids {
		out.Positions[id] = Position{X: x + widths[i]/2, Y: y}
		x += widths[i]
	}
}

func (c *Clos) labelWidth(label string) float64 {
	w := float64(runewidth.StringWidth(label))*c.cfg.CharWidth + c.cfg.LabelPadding
	return math.Max(c.cfg.MinLeafWidth, w)
}
