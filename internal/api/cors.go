package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// The API serves LAN control surfaces, so the CORS policy is a fixed
// allow-all rather than a per-origin configuration.
const (
	corsOrigin  = "*"
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS, PATCH"
	corsHeaders = "Content-Type, Authorization, X-Requested-With, Accept, Origin"
	corsMaxAge  = "86400"
)

func setCORSHeaders(set func(name, value string)) {
	set("Access-Control-Allow-Origin", corsOrigin)
	set("Access-Control-Allow-Methods", corsMethods)
	set("Access-Control-Allow-Headers", corsHeaders)
	set("Access-Control-Max-Age", corsMaxAge)
}

// corsMiddleware stamps CORS headers on every routed response.
func corsMiddleware(ctx huma.Context, next func(huma.Context)) {
	setCORSHeaders(ctx.SetHeader)
	next(ctx)
}

// registerPreflight answers OPTIONS requests at the mux level. Huma only
// runs middleware after method matching, so preflights would otherwise 404.
func registerPreflight(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /", func(w http.ResponseWriter, _ *http.Request) {
		setCORSHeaders(func(name, value string) { w.Header().Set(name, value) })
		w.WriteHeader(http.StatusNoContent)
	})
}
