package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"chat-inbox-server/internal/inbox"
	"chat-inbox-server/internal/storage"
	"chat-inbox-server/internal/storage/zapadapter"
	"go.uber.org/zap"
)

// dispatcher matches each request against an ordered route table and turns handler
// results and errors into HTTP responses
type dispatcher struct {
	logger       *zap.SugaredLogger
	routes       []Route
	maxBodyBytes int64
}

func (d *dispatcher) match(path string) (Route, Params, bool) {
	for _, route := range d.routes {
		if params, ok := route.Matcher.Match(path); ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route, params, ok := d.match(r.URL.Path)
	if !ok {
		http.Error(w, "Route not found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodHead {
		setMediaType(w, route)
		w.WriteHeader(http.StatusOK)
		return
	}

	fn, ok := route.Methods[r.Method]
	if !ok {
		w.Header().Set("Allow", route.allow())
		http.Error(w, r.Method+" is not supported", http.StatusMethodNotAllowed)
		return
	}

	req := &Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Params: params,
	}
	if hasBody(r.Method) {
		body, ok := readJSONBody(w, r, d.maxBodyBytes)
		if !ok {
			return
		}
		req.Body = body
	}

	result, err := fn(r.Context(), req)
	if err != nil {
		d.fail(w, r, err)
		return
	}
	if result == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	if r.Method == http.MethodDelete {
		setMediaType(w, route)
		w.WriteHeader(http.StatusOK)
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		d.fail(w, r, err)
		return
	}

	setMediaType(w, route)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		zapadapter.Sugar(r.Context(), d.logger).Errorf("writing marshaled data to ResponseWriter: %v", err)
	}
}

// fail maps a handler error onto a status code. Only validation messages reach the client.
func (d *dispatcher) fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *inbox.ValidationError
	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	default:
		zapadapter.Sugar(r.Context(), d.logger).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func setMediaType(w http.ResponseWriter, route Route) {
	if route.MediaType != "" {
		w.Header().Set("Content-Type", route.MediaType)
	}
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}
