package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/ChemGraph/internal/application/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

// StructureHandler serves the library: uploads, listing, retrieval,
// deletion, search and stateless conversion.
type StructureHandler struct {
	svc     library.Service
	maxBody int64
	logger  logging.Logger
}

func NewStructureHandler(svc library.Service, maxBody int64, logger logging.Logger) *StructureHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StructureHandler{svc: svc, maxBody: maxBody, logger: logger.Named("structures")}
}

// ListResponse pages through the catalog.
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// SearchResponse wraps search hits.
type SearchResponse struct {
	Query string      `json:"query"`
	Hits  interface{} `json:"hits"`
}

// Import handles POST /structures?format=. The body is the raw document;
// without a format it is sniffed. A document already in the library is
// answered with 200 and duplicate set, a new one with 201.
func (h *StructureHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, h.maxBody)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.svc.Import(r.Context(), &library.ImportInput{Format: r.URL.Query().Get("format"), Payload: data})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	w.Header().Set("Location", "/api/v1/structures/"+res.Structure.ID.String())
	writeJSON(w, status, res)
}

// List handles GET /structures?limit=&offset=.
func (h *StructureHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	res, err := h.svc.List(r.Context(), &library.ListInput{Limit: limit, Offset: offset})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: res.Structures, Total: res.Total, Limit: res.Limit, Offset: res.Offset})
}

// Get handles GET /structures/{id}.
func (h *StructureHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Document handles GET /structures/{id}/document and returns the upload
// byte for byte.
func (h *StructureHandler) Document(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Document(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("ETag", `"`+doc.Structure.ContentHash+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

// Delete handles DELETE /structures/{id}.
func (h *StructureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search?q=&limit=.
func (h *StructureHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := parsePagination(r)
	hits, err := h.svc.Search(r.Context(), &library.SearchInput{Query: q, Limit: limit})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Hits: hits})
}

// Convert handles POST /convert?from=&to=. The response body is the
// converted document; X-Cache tells whether it was served from the cache.
func (h *StructureHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("to") == "" {
		writeAppError(w, h.logger, errors.InvalidParam("query parameter \"to\" is required"))
		return
	}
	data, err := readBody(w, r, h.maxBody)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.svc.Convert(r.Context(), &library.ConvertInput{From: q.Get("from"), To: q.Get("to"), Payload: data})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	cache := "MISS"
	if res.Cached {
		cache = "HIT"
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("X-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// Inspect handles POST /inspect?format= and reports the document's summary
// and integrity problems without storing it.
func (h *StructureHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, h.maxBody)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	res, err := h.svc.Inspect(r.Context(), &library.InspectInput{Format: r.URL.Query().Get("format"), Payload: data})
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

//Personal.AI order the ending
