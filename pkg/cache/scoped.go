package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without colliding.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PayloadKey generates a prefixed payload key.
func (k *ScopedKeyer) PayloadKey(registryHash, machine string) string {
	return k.prefix + k.inner.PayloadKey(registryHash, machine)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(payloadHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(payloadHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

// PropsKey generates a prefixed property index key.
func (k *ScopedKeyer) PropsKey(logHash, prefix string) string {
	return k.prefix + k.inner.PropsKey(logHash, prefix)
}
