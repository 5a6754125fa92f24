package buildapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linnemanlabs/preslist/internal/artifact"
)

func (a *API) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	items, err := a.artifacts.List(r.Context(), prefix)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list artifacts", "prefix", prefix)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if items == nil {
		items = []artifact.Artifact{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"artifacts": items})
}

func (a *API) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if err := artifact.ValidateKey(key); err != nil {
		writeError(w, http.StatusBadRequest, "invalid key")
		return
	}

	meta, body, err := a.artifacts.Get(r.Context(), key)
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to read artifact", "key", key)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	ct := meta.ContentType
	if ct == "" {
		ct = artifact.ContentType(key)
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if meta.ETag != "" {
		w.Header().Set("ETag", `"`+meta.ETag+`"`)
	}
	_, _ = w.Write(body)
}
