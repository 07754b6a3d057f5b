package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/streamplan/internal/catalog"
	"github.com/Guilhem-Bonnet/streamplan/internal/httpjson"
)

// Le catalogue ne change pas pendant la vie du processus: les listes sont
// cachables et versionnées par l'empreinte du catalogue.
const lookupCacheControl = "public, max-age=600"

type CatalogHandler struct {
	cat  *catalog.Catalog
	etag string
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat, etag: `"` + cat.Fingerprint() + `"`}
}

func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/teams", h.teams)
	r.Get("/tournaments", h.tournaments)
	r.Get("/games", h.games)
}

func (h *CatalogHandler) teams(w http.ResponseWriter, r *http.Request) {
	h.writeCached(w, r, h.cat.Teams())
}

func (h *CatalogHandler) tournaments(w http.ResponseWriter, r *http.Request) {
	h.writeCached(w, r, h.cat.Tournaments())
}

func (h *CatalogHandler) games(w http.ResponseWriter, r *http.Request) {
	h.writeCached(w, r, h.cat.Games())
}

func (h *CatalogHandler) packages(w http.ResponseWriter, r *http.Request) {
	h.writeCached(w, r, h.cat.Packages())
}

func (h *CatalogHandler) writeCached(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Cache-Control", lookupCacheControl)
	w.Header().Set("ETag", h.etag)
	if match := r.Header.Get("If-None-Match"); match != "" && (match == h.etag || match == "*") {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	httpjson.Write(w, http.StatusOK, v)
}
