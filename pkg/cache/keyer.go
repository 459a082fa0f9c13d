package cache

import "slices"

// Keyer derives cache keys for each kind of cached artifact.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body.
	HTTPKey(namespace, key string) string

	// TopologyKey keys a fetched topology payload.
	TopologyKey(source, collection string) string

	// LayoutKey keys a resolved layout of a topology with the given hash.
	LayoutKey(topologyHash string, opts LayoutKeyOpts) string

	// RenderKey keys a rendered artifact of a layout with the given hash.
	RenderKey(layoutHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the topology that change a layout.
type LayoutKeyOpts struct {
	Variant    string   `json:"variant"`
	ConfigHash string   `json:"config_hash,omitempty"`
	Visible    []string `json:"visible,omitempty"`
}

// RenderKeyOpts are the inputs besides the layout that change a render.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Marks  string `json:"marks,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements [Keyer].
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// TopologyKey implements [Keyer].
func (DefaultKeyer) TopologyKey(source, collection string) string {
	return "topology:" + source + ":" + collection
}

// LayoutKey implements [Keyer]. The visible set is order-insensitive.
func (DefaultKeyer) LayoutKey(topologyHash string, opts LayoutKeyOpts) string {
	if opts.Visible != nil {
		opts.Visible = slices.Clone(opts.Visible)
		slices.Sort(opts.Visible)
	}
	return hashKey("layout", topologyHash, opts)
}

// RenderKey implements [Keyer].
func (DefaultKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return hashKey("render", layoutHash, opts)
}
