package httpserver

import "net/http"

// Routes aggregates handlers for the HTTP server. Auth, when set, wraps
// every route except the feed and health probes.
type Routes struct {
	RunScenario http.HandlerFunc
	Context     http.HandlerFunc
	UsageLogs   http.HandlerFunc
	AddProperty http.HandlerFunc
	AddDevice   http.HandlerFunc
	Feed        http.HandlerFunc
	Health      http.HandlerFunc
	Auth        func(http.Handler) http.Handler
}

// NewRouter wires all HTTP routes.
func NewRouter(routes Routes) http.Handler {
	protect := routes.Auth
	if protect == nil {
		protect = func(next http.Handler) http.Handler { return next }
	}

	mux := http.NewServeMux()
	if routes.RunScenario != nil {
		mux.Handle("/run-scenario", protect(method(http.MethodPost, routes.RunScenario)))
	}
	if routes.Context != nil {
		mux.Handle("/context", protect(method(http.MethodGet, routes.Context)))
	}
	if routes.UsageLogs != nil {
		// GET and POST are dispatched inside the handler.
		mux.Handle("/usage-logs", protect(routes.UsageLogs))
	}
	if routes.AddProperty != nil {
		mux.Handle("/properties", protect(method(http.MethodPost, routes.AddProperty)))
	}
	if routes.AddDevice != nil {
		mux.Handle("/devices", protect(method(http.MethodPost, routes.AddDevice)))
	}
	if routes.Feed != nil {
		mux.Handle("/feed", method(http.MethodGet, routes.Feed))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
