package layout

import (
	"math"

	"github.com/matzehuels/topoviz/pkg/topology"
)

// Ring places igp, bgp, prefix and workload vertices on concentric rings.
//
// With at least one visible igp vertex there are four rings. Without, bgp
// takes the innermost ring and the others move in. In that case a bgp ring
// larger than the split threshold becomes two sub-rings: the first half (by
// category index) stays inner, the rest sits SplitGap further out.
//
// Workloads do not get their own even spacing. Each one is drawn at the
// angle of its first connected prefix, siblings spread symmetrically within
// WorkloadArc. Workloads without a visible prefix share the remaining ring
// evenly. Vertices of any other category are left unpositioned.
type Ring struct {
	cfg RingConfig
}

// NewRing creates a ring strategy.
func NewRing(cfg RingConfig) *Ring { return &Ring{cfg: cfg} }

// Variant implements [Strategy].
func (r *Ring) Variant() Variant { return VariantRing }

// Place implements [Strategy].
func (r *Ring) Place(m *topology.Model, visible []string) Placement {
	ids := visibleIDs(m, visible)
	groups := groupByCategory(m, ids)
	out := Placement{Positions: make(map[string]Position, len(ids))}

	hasIGP := len(groups[topology.CategoryIGP]) > 0
	radii := r.radii(hasIGP)
	angles := make(map[string]float64, len(ids))

	for _, cat := range []topology.Category{topology.CategoryIGP, topology.CategoryBGP, topology.CategoryPrefix} {
		members := groups[cat]
		if len(members) == 0 {
			continue
		}
		radius := radii[cat]
		if cat == topology.CategoryBGP && !hasIGP && len(members) > r.cfg.SplitThreshold {
			split := (len(members) + 1) / 2
			r.spread(out, angles, members[:split], radius, 0)
			r.spread(out, angles, members[split:], radius+r.cfg.SplitGap, 0.5)
			continue
		}
		r.spread(out, angles, members, radius, 0)
	}

	r.placeWorkloads(m, out, angles, groups[topology.CategoryWorkload], radii[topology.CategoryWorkload])
	return out
}

// radii returns the ring radius per category.
func (r *Ring) radii(hasIGP bool) map[topology.Category]float64 {
	if hasIGP {
		return map[topology.Category]float64{
			topology.CategoryIGP:      r.cfg.IGPRadius,
			topology.CategoryBGP:      r.cfg.BGPRadius,
			topology.CategoryPrefix:   r.cfg.PrefixRadius,
			topology.CategoryWorkload: r.cfg.WorkloadRadius,
		}
	}
	return map[topology.Category]float64{
		topology.CategoryBGP:      r.cfg.InnerBGPRadius,
		topology.CategoryPrefix:   r.cfg.InnerPrefixRadius,
		topology.CategoryWorkload: r.cfg.InnerWorkloadRadius,
	}
}

// spread places ids evenly around a ring. phase shifts every slot by a
// fraction of one step.
func (r *Ring) spread(out Placement, angles map[string]float64, ids []string, radius, phase float64) {
	step := 2 * math.Pi / float64(len(ids))
	for i, id := range ids {
		a := r.cfg.StartAngle + (float64(i)+phase)*step
		angles[id] = a
		out.Positions[id] = polar(radius, a)
	}
}

func (r *Ring) placeWorkloads(m *topology.Model, out Placement, angles map[string]float64, workloads []string, radius float64) {
	if len(workloads) == 0 {
		return
	}

	var parents []string
	children := make(map[string][]string)
	var orphans []string
	for _, w := range workloads {
		p := prefixParent(m, w, angles)
		if p == "" {
			orphans = append(orphans, w)
			continue
		}
		if _, seen := children[p]; !seen {
			parents = append(parents, p)
		}
		children[p] = append(children[p], w)
	}

	for _, p := range parents {
		kids := children[p]
		step := r.cfg.WorkloadStep
		if n := len(kids); n > 1 && step*float64(n-1) > r.cfg.WorkloadArc {
			step = r.cfg.WorkloadArc / float64(n-1)
		}
		mid := float64(len(kids)-1) / 2
		for j, w := range kids {
			a := angles[p] + (float64(j)-mid)*step
			angles[w] = a
			out.Positions[w] = polar(radius, a)
		}
	}

	if len(orphans) > 0 {
		r.spread(out, angles, orphans, radius, 0)
	}
}

// prefixParent returns the first placed prefix neighbor of w.
func prefixParent(m *topology.Model, w string, angles map[string]float64) string {
	for _, n := range m.Neighbors(w) {
		v, _ := m.Vertex(n)
		if v.Category != topology.CategoryPrefix {
			continue
		}
		if _, placed := angles[n]; placed {
			return n
		}
	}
	return ""
}

func polar(radius, angle float64) Position {
	return Position{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}
