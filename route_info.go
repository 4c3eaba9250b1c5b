package chain

import (
	"fmt"
	"strings"
)

const (
	separator = '/'
	parameter = ':'
	wildcard  = '*'
)

// RouteInfo represents all useful information about a route path
type RouteInfo struct {
	path         string   // the original route, ex. "/files/:dir/*filepath"
	pattern      string   // chi routing pattern, ex. "/files/{dir}/*"
	hasStatic    bool     // has static segments
	hasParameter bool     // has named parameters
	hasWildcard  bool     // ends with a catch-all parameter
	segments     []string // parameters are represented as ":" and the catch-all as "*"
	params       []string // parameter names, ex. ["dir", "filepath"]
}

func (d *RouteInfo) Path() string {
	return d.path
}

// Pattern returns the chi routing pattern of this route
func (d *RouteInfo) Pattern() string {
	return d.pattern
}

func (d *RouteInfo) Params() []string {
	return d.params
}

func (d *RouteInfo) Segments() []string {
	return d.segments
}

func (d *RouteInfo) HasStatic() bool {
	return d.hasStatic
}

func (d *RouteInfo) HasParameter() bool {
	return d.hasParameter
}

func (d *RouteInfo) HasWildcard() bool {
	return d.hasWildcard
}

// Wildcard returns the name of the catch-all parameter, if any
func (d *RouteInfo) Wildcard() string {
	if d.hasWildcard {
		return d.params[len(d.params)-1]
	}
	return ""
}

// OpenAPIPath returns the path as an OpenAPI path template ("/user/:name" -> "/user/{name}")
func (d *RouteInfo) OpenAPIPath() string {
	var b strings.Builder
	param := 0
	for _, segment := range d.segments {
		b.WriteByte(separator)
		switch segment {
		case string(parameter), string(wildcard):
			b.WriteString("{" + d.params[param] + "}")
			param++
		default:
			b.WriteString(segment)
		}
	}
	return b.String()
}

// Matches checks if this path is applicable over the other. Used for registering middlewares in routes
func (d *RouteInfo) Matches(o *RouteInfo) bool {
	if d.path == o.path || d.pattern == o.pattern {
		return true
	}

	if len(d.segments) > len(o.segments) {
		//  this: /blog/:category/:page/:subpage
		// other: /blog/*filepath
		if !o.hasWildcard {
			return false
		}
		for j, oSegment := range o.segments {
			if oSegment == string(wildcard) {
				return true
			}
			iSegment := d.segments[j]
			if iSegment != string(parameter) && oSegment != string(parameter) && oSegment != iSegment {
				return false
			}
		}
		return false
	}

	if !d.hasWildcard && len(d.segments) < len(o.segments) {
		return false
	}

	for j, iSegment := range d.segments {
		switch iSegment {
		case string(parameter):
			continue
		case string(wildcard):
			//  this: /blog/category/*page
			// other: /blog/category/page/subpage
			return true
		default:
			oSegment := o.segments[j]
			if oSegment == string(parameter) {
				continue
			}
			if iSegment != oSegment {
				return false
			}
		}
	}

	return true
}

func (d *RouteInfo) String() string {
	return fmt.Sprintf(
		`RouteInfo{path: "%v", pattern: "%v", hasStatic: %v, hasParameter: %v, hasWildcard: %v, params: [%v], segments: [%v]}`,
		d.path, d.pattern, d.hasStatic, d.hasParameter, d.hasWildcard, strings.Join(d.params, ", "), strings.Join(d.segments, ", "),
	)
}

// ParseRouteInfo extracts information about a route path. Parameters are written as ":name" (or "{name}") and the
// catch-all parameter as "*name" at the end of the path.
func ParseRouteInfo(path string) *RouteInfo {
	if !strings.HasPrefix(path, string(separator)) {
		path = string(separator) + path
	}

	details := &RouteInfo{path: path}
	pattern := &strings.Builder{}
	parts := strings.Split(path[1:], string(separator))

	for i, part := range parts {
		pattern.WriteByte(separator)

		name := ""
		isParam := false
		if strings.IndexByte(part, parameter) == 0 {
			name, isParam = part[1:], true
		} else if len(part) > 2 && part[0] == '{' && part[len(part)-1] == '}' {
			name, isParam = part[1:len(part)-1], true
		}

		switch {
		case isParam:
			if name == "" {
				panic(fmt.Sprintf("[chain] is necessary to inform the name of the parameter. path: %s", path))
			}
			if strings.ContainsAny(name, ":*{}") {
				panic(fmt.Sprintf("[chain] only one wildcard per path segment is allowed. path: %s", path))
			}
			details.hasParameter = true
			details.segments = append(details.segments, string(parameter))
			details.params = append(details.params, name)
			pattern.WriteString("{" + name + "}")
		case strings.IndexByte(part, wildcard) == 0:
			if i != len(parts)-1 {
				panic(fmt.Sprintf("[chain] catch-all routes are only allowed at the end of the path. path: %s", path))
			}
			name = part[1:]
			if name == "" {
				name = "filepath"
			}
			if strings.ContainsAny(name, ":*{}") {
				panic(fmt.Sprintf("[chain] only one wildcard per path segment is allowed. path: %s", path))
			}
			details.hasWildcard = true
			details.segments = append(details.segments, string(wildcard))
			details.params = append(details.params, name)
			pattern.WriteByte(wildcard)
		default:
			details.hasStatic = true
			details.segments = append(details.segments, part)
			pattern.WriteString(part)
		}
	}

	details.pattern = pattern.String()
	return details
}
