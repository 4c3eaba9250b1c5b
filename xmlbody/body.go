package xmlbody

import (
	chain "github.com/nidorx/chain-xml"
)

// BodyOption configures the body parameter declared with Body
type BodyOption func(spec *chain.BodySpec)

// Body marks the route input as an XML body parameter. The body is required and documented as "application/xml"
// unless options say otherwise.
//
//	xmlbody.POST(router, "/items", createItem, xmlbody.Body(xmlbody.Embed(), xmlbody.Alias("item")))
func Body(options ...BodyOption) chain.RouteOption {
	spec := &chain.BodySpec{MediaType: MediaTypeApplication, Required: true}
	for _, option := range options {
		option(spec)
	}
	return chain.Body(spec)
}

// Embed expects the model wrapped in an element named after the Alias ("body" by default)
func Embed() BodyOption {
	return func(spec *chain.BodySpec) { spec.Embed = true }
}

func Alias(name string) BodyOption {
	return func(spec *chain.BodySpec) { spec.Alias = name }
}

func Title(title string) BodyOption {
	return func(spec *chain.BodySpec) { spec.Title = title }
}

func Description(description string) BodyOption {
	return func(spec *chain.BodySpec) { spec.Description = description }
}

func Gt(v float64) BodyOption {
	return func(spec *chain.BodySpec) { spec.Gt = &v }
}

func Ge(v float64) BodyOption {
	return func(spec *chain.BodySpec) { spec.Ge = &v }
}

func Lt(v float64) BodyOption {
	return func(spec *chain.BodySpec) { spec.Lt = &v }
}

func Le(v float64) BodyOption {
	return func(spec *chain.BodySpec) { spec.Le = &v }
}

func MinLength(n int) BodyOption {
	return func(spec *chain.BodySpec) { spec.MinLength = &n }
}

func MaxLength(n int) BodyOption {
	return func(spec *chain.BodySpec) { spec.MaxLength = &n }
}

// Regex pattern string bodies must match
func Regex(pattern string) BodyOption {
	return func(spec *chain.BodySpec) { spec.Pattern = pattern }
}

func Example(example any) BodyOption {
	return func(spec *chain.BodySpec) { spec.Example = example }
}

func Examples(examples map[string]any) BodyOption {
	return func(spec *chain.BodySpec) { spec.Examples = examples }
}

// Extra adds a schema keyword to the documented body
func Extra(key string, value any) BodyOption {
	return func(spec *chain.BodySpec) {
		if spec.Extra == nil {
			spec.Extra = map[string]any{}
		}
		spec.Extra[key] = value
	}
}

// MediaType documented for the body, ex. "text/xml" or "application/soap+xml"
func MediaType(mediaType string) BodyOption {
	return func(spec *chain.BodySpec) { spec.MediaType = mediaType }
}

// Optional accepts requests without body, the handler then receives nil
func Optional() BodyOption {
	return func(spec *chain.BodySpec) { spec.Required = false }
}
