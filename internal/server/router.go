package server

import (
	"net/http"
)

// CallbackRouter routes requests on the short-lived redirect listener.
//
// The listener exists for exactly one browser visit, so the router stays
// minimal: it registers [Handler] route sets on an [http.ServeMux] and
// rejects every method except GET, the only method an OAuth redirect uses.
type CallbackRouter struct {
	mux *http.ServeMux
}

// NewCallbackRouter creates an empty [CallbackRouter].
func NewCallbackRouter() *CallbackRouter {
	return &CallbackRouter{mux: http.NewServeMux()}
}

// Handler registers a [Handler] under every route it serves.
func (r *CallbackRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.mux.Handle(route, handler)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *CallbackRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.mux.ServeHTTP(w, req)
}
