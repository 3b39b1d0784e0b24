package server

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Params holds named path captures
type Params map[string]string

// Get returns the value captured for name or an empty string
func (p Params) Get(name string) string {
	return p[name]
}

// Request is what a route handler sees of an inbound HTTP request
type Request struct {
	Method string
	Path   string
	Params Params
	// Body is the validated JSON body of write requests, nil otherwise
	Body []byte
}

// HandlerFunc produces a JSON-encodable result for a matched request.
// A nil result with a nil error is answered with 404.
type HandlerFunc func(ctx context.Context, req *Request) (interface{}, error)

// Matcher decides whether a route serves path and extracts its params
type Matcher interface {
	Match(path string) (Params, bool)
}

// Route associates a path matcher with the handlers of each supported method
type Route struct {
	Matcher   Matcher
	MediaType string
	Methods   map[string]HandlerFunc
}

// allow lists the methods accepted by r, HEAD included, for the Allow header
func (r Route) allow() string {
	methods := make([]string, 0, len(r.Methods)+1)
	methods = append(methods, "HEAD")
	for m := range r.Methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

type segment struct {
	literal string
	param   string
}

// Template is a slash-separated path pattern with named captures, e.g. /chat/v1/inbox/{value}.
// It matches by prefix: every template segment must be present, anything after the last one is ignored.
type Template struct {
	pattern  string
	segments []segment
}

// ParseTemplate compiles pattern. Captures must span a whole segment.
func ParseTemplate(pattern string) (Template, error) {
	if !strings.HasPrefix(pattern, "/") {
		return Template{}, fmt.Errorf("template %q must start with a slash", pattern)
	}

	parts := strings.Split(pattern, "/")
	t := Template{pattern: pattern, segments: make([]segment, 0, len(parts))}
	seen := map[string]bool{}
	for _, p := range parts {
		if !strings.ContainsAny(p, "{}") {
			t.segments = append(t.segments, segment{literal: p})
			continue
		}
		if len(p) < 3 || p[0] != '{' || p[len(p)-1] != '}' || strings.ContainsAny(p[1:len(p)-1], "{}") {
			return Template{}, fmt.Errorf("template %q: malformed capture %q", pattern, p)
		}
		name := p[1 : len(p)-1]
		if seen[name] {
			return Template{}, fmt.Errorf("template %q: duplicate capture %q", pattern, name)
		}
		seen[name] = true
		t.segments = append(t.segments, segment{param: name})
	}

	return t, nil
}

// MustTemplate is like ParseTemplate but panics on a malformed pattern
func MustTemplate(pattern string) Template {
	t, err := ParseTemplate(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Template) String() string { return t.pattern }

// Match implements Matcher
func (t Template) Match(path string) (Params, bool) {
	parts := strings.Split(path, "/")
	if len(parts) < len(t.segments) {
		return nil, false
	}

	params := Params{}
	for i, s := range t.segments {
		if s.param != "" {
			params[s.param] = parts[i]
			continue
		}
		if parts[i] != s.literal {
			return nil, false
		}
	}

	return params, true
}

const (
	inboxPattern = "/chat/v1/inbox/{value}"
	inboxParam   = "value"
)

// routes returns the route table, evaluated first to last
func (h *handler) routes() []Route {
	return []Route{
		{
			Matcher:   MustTemplate(inboxPattern),
			MediaType: "application/json",
			Methods: map[string]HandlerFunc{
				"GET":    h.listInbox,
				"POST":   h.createMessage,
				"DELETE": h.deleteMessage,
			},
		},
	}
}
