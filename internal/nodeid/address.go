package nodeid

// String serializes the Port into its canonical `node.port` representation.
func (p Port) String() string {
	if p.IsZero() {
		return ""
	}
	return p.Node + "." + p.Name
}

// MarshalText implements encoding.TextMarshaler so ports can key JSON maps.
func (p Port) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Port) UnmarshalText(text []byte) error {
	parsed, err := ParsePort(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
