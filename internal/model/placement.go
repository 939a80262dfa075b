package model

import (
	"encoding/json"
	"fmt"
)

// Default coordinates applied to a placement record field that is absent.
const (
	DefaultX = 0.0
	DefaultY = 1.5
	DefaultZ = 0.0
)

// PlacementRecord is one raw unit of level content as delivered by a content
// provider. Coordinates are optional: nil means "absent" and resolves to the
// defaults in Position.
//
// JSON input accepts both lowercase and uppercase coordinate keys
// (x|X, y|Y, z|Z); lowercase wins when both are present and non-null.
// Unknown or mistyped fields are ignored rather than rejected.
type PlacementRecord struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
	Z *float64 `json:"z,omitempty"`

	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	Model string `json:"model,omitempty"`
	Type  string `json:"type,omitempty"`
}

// At returns a record with all three coordinates set.
func At(x, y, z float64) PlacementRecord {
	return PlacementRecord{X: &x, Y: &y, Z: &z}
}

// WithRole returns a copy of r with Role set.
func (r PlacementRecord) WithRole(role string) PlacementRecord {
	r.Role = role
	return r
}

// WithName returns a copy of r with the Name hint set.
func (r PlacementRecord) WithName(name string) PlacementRecord {
	r.Name = name
	return r
}

// Position resolves the record coordinates, applying defaults to absent fields.
func (r PlacementRecord) Position() Vec3 {
	return Vec3{
		X: valueOr(r.X, DefaultX),
		Y: valueOr(r.Y, DefaultY),
		Z: valueOr(r.Z, DefaultZ),
	}
}

// ModelHints returns the non-empty name, model and type hints in lookup order.
func (r PlacementRecord) ModelHints() []string {
	hints := make([]string, 0, 3)
	for _, h := range [...]string{r.Name, r.Model, r.Type} {
		if h != "" {
			hints = append(hints, h)
		}
	}
	return hints
}

// String implements fmt.Stringer for log output.
func (r PlacementRecord) String() string {
	p := r.Position()
	return fmt.Sprintf("(%.2f, %.2f, %.2f) role=%q name=%q", p.X, p.Y, p.Z, r.Role, r.Name)
}

// UnmarshalJSON decodes a record leniently. A non-object value decodes to an
// empty record; fields of the wrong type are treated as absent.
func (r *PlacementRecord) UnmarshalJSON(data []byte) error {
	*r = PlacementRecord{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	r.X = coord(fields, "x", "X")
	r.Y = coord(fields, "y", "Y")
	r.Z = coord(fields, "z", "Z")
	r.Role = str(fields, "role")
	r.Name = str(fields, "name")
	r.Model = str(fields, "model")
	r.Type = str(fields, "type")
	return nil
}

func coord(fields map[string]json.RawMessage, keys ...string) *float64 {
	for _, k := range keys {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil || v == nil {
			continue
		}
		return v
	}
	return nil
}

func str(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
