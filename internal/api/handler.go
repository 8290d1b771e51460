package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hotcache/cache"
	"hotcache/internal/catalog"
)

type EntriesHandler struct {
	Cache *cache.Handle[*catalog.Catalog]
}

func NewEntriesHandler(h *cache.Handle[*catalog.Catalog]) *EntriesHandler {
	return &EntriesHandler{Cache: h}
}

// SnapshotInfo describes the currently served snapshot.
type SnapshotInfo struct {
	Cache    string    `json:"cache"`
	Version  uint64    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Entries  int       `json:"entries"`
	State    string    `json:"state"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *EntriesHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Cache.Read().Entries())
}

func (h *EntriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, ok := h.Cache.Read().Get(chi.URLParam(r, "key"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntriesHandler) Snapshot(w http.ResponseWriter, _ *http.Request) {
	s := h.Cache.Snapshot()
	writeJSON(w, http.StatusOK, SnapshotInfo{
		Cache:    h.Cache.Name(),
		Version:  s.Version,
		LoadedAt: s.LoadedAt,
		Entries:  s.Value.Len(),
		State:    h.Cache.State().String(),
	})
}
