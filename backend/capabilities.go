package backend

import "slices"

// Capability names an optional behavior a backend provides on top of the
// path-level operations.
type Capability string

const (
	CapabilityMount    Capability = "mount"
	CapabilitySelect   Capability = "select"
	CapabilityFormat   Capability = "format"
	CapabilityTruncate Capability = "truncate"
)

// Capabilities describes what a backend supports
type Capabilities struct {
	Capabilities []Capability
}

// CapabilitiesOf derives the capabilities of b from the interfaces it implements.
func CapabilitiesOf(b Backend) *Capabilities {
	c := &Capabilities{}
	if _, ok := b.(Mounter); ok {
		c.Capabilities = append(c.Capabilities, CapabilityMount, CapabilityFormat)
	}
	if _, ok := b.(Selecter); ok {
		c.Capabilities = append(c.Capabilities, CapabilitySelect)
	}
	if _, ok := b.(Truncater); ok {
		c.Capabilities = append(c.Capabilities, CapabilityTruncate)
	}
	return c
}

// Contains checks if a capability is supported
func (c *Capabilities) Contains(cap Capability) bool {
	return slices.Contains(c.Capabilities, cap)
}

func (c *Capabilities) Strings() []string {
	out := make([]string, 0, len(c.Capabilities))
	for _, cap := range c.Capabilities {
		out = append(out, string(cap))
	}
	return out
}
