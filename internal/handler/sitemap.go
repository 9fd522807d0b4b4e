package handler

import (
	"cmp"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
)

type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

type SitemapResponse struct {
	Routes []Route `json:"routes"`
}

// Sitemap lists every route registered on routes, sorted by path then method.
// The walk happens per request, so it always reflects the live router.
//
// HTTP: GET /
func Sitemap(routes chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out []Route
		err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			out = append(out, Route{Method: method, Path: route})
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}

		slices.SortFunc(out, func(a, b Route) int {
			return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
		})
		writeJSON(w, http.StatusOK, SitemapResponse{Routes: out})
	}
}
