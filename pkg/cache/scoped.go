package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey implements [Keyer].
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TopologyKey implements [Keyer].
func (k *ScopedKeyer) TopologyKey(source, collection string) string {
	return k.prefix + k.inner.TopologyKey(source, collection)
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(topologyHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(topologyHash, opts)
}

// RenderKey implements [Keyer].
func (k *ScopedKeyer) RenderKey(layoutHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(layoutHash, opts)
}
