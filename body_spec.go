package chain

import (
	"reflect"
	"strconv"
	"strings"
)

// BodySpec describes the body parameter of a route: how it is read and how it is documented.
type BodySpec struct {
	// Type of the value the body is decoded into
	Type reflect.Type

	// MediaType documented for the request body (ex. "application/xml")
	MediaType string

	// Required rejects requests with an empty body
	Required bool

	// Embed expects the payload wrapped in an element (or key) named after Alias
	Embed bool
	Alias string

	Title       string
	Description string

	// numeric constraints, applied to number bodies
	Gt, Ge, Lt, Le *float64

	// length constraints, applied to string and list bodies
	MinLength, MaxLength *int

	// Pattern is a regular expression applied to string bodies
	Pattern string

	Example  any
	Examples map[string]any

	// Extra holds additional schema keywords (exposed as "x-" extensions)
	Extra map[string]any
}

// EmbedName returns the wrapper name of an embedded body
func (s *BodySpec) EmbedName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return "body"
}

// HasConstraints reports whether any value constraint is declared
func (s *BodySpec) HasConstraints() bool {
	return s.Gt != nil || s.Ge != nil || s.Lt != nil || s.Le != nil ||
		s.MinLength != nil || s.MaxLength != nil || s.Pattern != ""
}

// numericTag builds the validator tag of the numeric constraints
func (s *BodySpec) numericTag() string {
	var tags []string
	add := func(name string, v *float64) {
		if v != nil {
			tags = append(tags, name+"="+strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}
	add("gt", s.Gt)
	add("gte", s.Ge)
	add("lt", s.Lt)
	add("lte", s.Le)
	return strings.Join(tags, ",")
}

// lengthTag builds the validator tag of the length constraints
func (s *BodySpec) lengthTag() string {
	var tags []string
	if s.MinLength != nil {
		tags = append(tags, "min="+strconv.Itoa(*s.MinLength))
	}
	if s.MaxLength != nil {
		tags = append(tags, "max="+strconv.Itoa(*s.MaxLength))
	}
	return strings.Join(tags, ",")
}
