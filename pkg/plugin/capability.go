package plugin

import (
	"encoding/json"
	"fmt"
)

// Capability is a service a parcel shop supports.
type Capability uint8

const (
	CapabilityPickup Capability = 1 << iota
	CapabilityReturn
	CapabilityOnline
	CapabilityCOD
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapabilityPickup, "pickup"},
	{CapabilityReturn, "return"},
	{CapabilityOnline, "online"},
	{CapabilityCOD, "cod"},
}

func (c Capability) String() string {
	for _, n := range capabilityNames {
		if n.c == c {
			return n.name
		}
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// Capabilities is a set of capabilities. Adding a member twice is a no-op.
type Capabilities uint8

// Add returns the set with c included.
func (s Capabilities) Add(c Capability) Capabilities {
	return s | Capabilities(c)
}

// Has reports whether c is in the set.
func (s Capabilities) Has(c Capability) bool {
	return s&Capabilities(c) != 0
}

// Len returns the number of members.
func (s Capabilities) Len() int {
	n := 0
	for _, cn := range capabilityNames {
		if s.Has(cn.c) {
			n++
		}
	}
	return n
}

// List returns the members in a fixed order.
func (s Capabilities) List() []Capability {
	out := make([]Capability, 0, len(capabilityNames))
	for _, cn := range capabilityNames {
		if s.Has(cn.c) {
			out = append(out, cn.c)
		}
	}
	return out
}

// MarshalJSON encodes the set as a list of names.
func (s Capabilities) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(capabilityNames))
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of names. Unknown names are rejected.
func (s *Capabilities) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set Capabilities
	for _, name := range names {
		found := false
		for _, cn := range capabilityNames {
			if cn.name == name {
				set = set.Add(cn.c)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown capability %q", name)
		}
	}
	*s = set
	return nil
}
