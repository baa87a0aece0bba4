package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

func (s *Server) listCollections(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.Collections(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	q := remote.ParseQuery(r.URL.Query())
	if q.Page > 0 && q.Limit <= 0 {
		q.Limit = 10
	}

	records, total, err := s.store.List(r.Context(), collection, q)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := domain.ID(chi.URLParam(r, "id"))

	record, err := s.store.Get(r.Context(), collection, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	record, err := s.store.Insert(r.Context(), collection, body)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := domain.ID(chi.URLParam(r, "id"))

	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	record, err := s.store.Patch(r.Context(), collection, id, body)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := domain.ID(chi.URLParam(r, "id"))

	if err := s.store.Delete(r.Context(), collection, id, s.dependents[collection]); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// deleteMany removes every record named by an id query parameter. Dependents
// are left alone; callers use the single-record route for cascades.
func (s *Server) deleteMany(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	raw := r.URL.Query()["id"]
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "at least one id parameter is required")
		return
	}
	ids := make([]domain.ID, 0, len(raw))
	for _, id := range raw {
		ids = append(ids, domain.ID(id))
	}

	n, err := s.store.DeleteMany(r.Context(), collection, ids)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body must be valid JSON")
		return nil, false
	}
	return body, true
}
