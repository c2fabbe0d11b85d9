package nodeid

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// segmentRegex matches a single id or port-name segment.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-" && name != "_"
}

// ValidateID checks that id is usable as a node identifier.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !segmentRegex.MatchString(id) {
		return fmt.Errorf("invalid identifier format: %q", id)
	}
	if !isValidSegmentName(id) {
		return fmt.Errorf("invalid identifier: %q", id)
	}
	return nil
}

// ValidatePortName checks a port name. Dotted names are accepted as long as
// every segment is valid.
func ValidatePortName(name string) error {
	if name == "" {
		return fmt.Errorf("port name cannot be empty")
	}
	for _, segment := range strings.Split(name, ".") {
		if segment == "" {
			return fmt.Errorf("port name %q contains empty segment", name)
		}
		if !segmentRegex.MatchString(segment) || !isValidSegmentName(segment) {
			return fmt.Errorf("invalid port name segment %q in %q", segment, name)
		}
	}
	return nil
}

// ParsePort creates a Port by parsing its canonical `node.port` form. The
// first segment is the node id; everything after the first dot is the port.
func ParsePort(raw string) (Port, error) {
	if raw == "" {
		return Port{}, fmt.Errorf("port reference cannot be empty")
	}
	node, name, ok := strings.Cut(raw, ".")
	if !ok {
		return Port{}, fmt.Errorf("port reference %q must have the form node.port", raw)
	}
	if err := ValidateID(node); err != nil {
		return Port{}, fmt.Errorf("port reference %q: %w", raw, err)
	}
	if err := ValidatePortName(name); err != nil {
		return Port{}, fmt.Errorf("port reference %q: %w", raw, err)
	}
	return Port{Node: node, Name: name}, nil
}

// MustParsePort is like ParsePort but panics on malformed input. It is meant
// for literals in code and tests.
func MustParsePort(raw string) Port {
	p, err := ParsePort(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// SortPorts orders ports by node id, then port name.
func SortPorts(ports []Port) {
	sort.Slice(ports, func(i, j int) bool {
		if ports[i].Node != ports[j].Node {
			return ports[i].Node < ports[j].Node
		}
		return ports[i].Name < ports[j].Name
	})
}
