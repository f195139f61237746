package webhook

import "net/http"

// Listeners is an ordered set of handlers sharing one server. Unlike a mux,
// every handler sees every request, in order; it is up to each of them to
// decide whether to write a response.
//
// Installing a Listeners value as an http.Server's Handler before attaching
// a Webhook lets several independent components share the server.
type Listeners []http.Handler

func (l Listeners) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, h := range l {
		h.ServeHTTP(w, r)
	}
}

// captureHandlers snapshots whatever a server currently routes to. A nil
// handler is what net/http treats as DefaultServeMux.
func captureHandlers(h http.Handler) Listeners {
	switch t := h.(type) {
	case nil:
		return Listeners{http.DefaultServeMux}
	case Listeners:
		return append(Listeners(nil), t...)
	default:
		return Listeners{h}
	}
}
