package cache

import "strings"

// Key type prefixes.
const (
	KeyTypePayload  = "payload"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
	KeyTypeProps    = "props"
)

// LayoutKeyOpts are the inputs that change a layout.
type LayoutKeyOpts struct {
	VizType     string  `json:"viz_type"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Ticks       int     `json:"ticks"`
	RingSpacing float64 `json:"ring_spacing"`
	Strength    float64 `json:"strength"`
	Engine      string  `json:"engine,omitempty"`
	// Detailed is set for nodelink layouts only, whose DOT carries labels.
	Detailed bool `json:"detailed,omitempty"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Hover    string `json:"hover,omitempty"`
	Selected string `json:"selected,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// PayloadKey keys a machine's rendering payload by the hash of the
	// registry it was built from.
	PayloadKey(registryHash, machine string) string

	// LayoutKey keys a layout by the hash of its payload.
	LayoutKey(payloadHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of its layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string

	// PropsKey keys a property index by the hash of its log file.
	PropsKey(logHash, prefix string) string
}

// DefaultKeyer hashes every key input with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PayloadKey implements [Keyer].
func (DefaultKeyer) PayloadKey(registryHash, machine string) string {
	return hashKey(KeyTypePayload, registryHash, machine)
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(payloadHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, payloadHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// PropsKey implements [Keyer].
func (DefaultKeyer) PropsKey(logHash, prefix string) string {
	return hashKey(KeyTypeProps, logHash, prefix)
}

// KeyType returns the type segment of a key, skipping any scope prefix, or
// "unknown" for keys not produced by a [Keyer].
func KeyType(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}

var _ Keyer = DefaultKeyer{}
