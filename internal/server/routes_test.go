package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTemplateMatch(t *testing.T) {
	tmpl := MustTemplate("/chat/v1/inbox/{value}")

	tests := []struct {
		path  string
		ok    bool
		value string
	}{
		{"/chat/v1/inbox/bob", true, "bob"},
		{"/chat/v1/inbox/", true, ""},
		{"/chat/v1/inbox/42/extra", true, "42"},
		{"/chat/v1/inbox", false, ""},
		{"/chat/v1/inboxes/bob", false, ""},
		{"/chat/v2/inbox/bob", false, ""},
		{"chat/v1/inbox/bob", false, ""},
		{"/", false, ""},
	}

	for _, tt := range tests {
		params, ok := tmpl.Match(tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		if ok {
			require.Equal(t, tt.value, params.Get("value"), tt.path)
		}
	}
}

func TestTemplateMultipleCaptures(t *testing.T) {
	tmpl := MustTemplate("/rooms/{room}/messages/{id}")

	params, ok := tmpl.Match("/rooms/lobby/messages/7")
	require.True(t, ok)
	require.Equal(t, Params{"room": "lobby", "id": "7"}, params)
	require.Equal(t, "/rooms/{room}/messages/{id}", tmpl.String())
}

func TestParseTemplateErrors(t *testing.T) {
	for _, pattern := range []string{
		"chat/{value}",
		"/chat/{}",
		"/chat/{value",
		"/chat/x{value}",
		"/chat/{a}/{a}",
	} {
		_, err := ParseTemplate(pattern)
		require.Error(t, err, pattern)
	}

	require.Panics(t, func() { MustTemplate("/bad/{") })
}

func TestDispatcherFirstMatchWins(t *testing.T) {
	var hit string
	handlerNamed := func(name string) HandlerFunc {
		return func(context.Context, *Request) (interface{}, error) {
			hit = name
			return name, nil
		}
	}

	d := &dispatcher{
		routes: []Route{
			{Matcher: MustTemplate("/a/{x}"), Methods: map[string]HandlerFunc{"GET": handlerNamed("first")}},
			{Matcher: MustTemplate("/a/{x}/{y}"), Methods: map[string]HandlerFunc{"GET": handlerNamed("second")}},
			{Matcher: MustTemplate("/b/{x}"), Methods: map[string]HandlerFunc{"GET": handlerNamed("third")}},
		},
	}

	rr := do(t, d, "GET", "/a/1/2", "")
	require.Equal(t, 200, rr.Code)
	require.Equal(t, "first", hit)
	require.Equal(t, `"first"`, rr.Body.String())

	do(t, d, "GET", "/b/1", "")
	require.Equal(t, "third", hit)
}

func TestDispatcherNilResultIsNotFound(t *testing.T) {
	d := &dispatcher{
		routes: []Route{{
			Matcher:   MustTemplate("/things/{id}"),
			MediaType: "application/json",
			Methods: map[string]HandlerFunc{
				"GET": func(context.Context, *Request) (interface{}, error) { return nil, nil },
			},
		}},
	}

	rr := do(t, d, "GET", "/things/1", "")
	require.Equal(t, 404, rr.Code)
	require.Equal(t, "Not found\n", rr.Body.String())
}

func TestRouteAllow(t *testing.T) {
	r := Route{Methods: map[string]HandlerFunc{"POST": nil, "GET": nil}}
	require.Equal(t, "GET, HEAD, POST", r.allow())
}
