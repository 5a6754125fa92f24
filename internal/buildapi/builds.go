package buildapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/preslist/internal/build"
)

func (a *API) handleSubmitBuild(w http.ResponseWriter, r *http.Request) {
	var req build.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	sr, err := a.svc.Submit(r.Context(), req)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to submit build")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("preslist.build.id", sr.ID),
		attribute.Bool("preslist.build.duplicate", sr.Skipped),
	)

	resp := map[string]any{"id": sr.ID}
	if sr.Skipped {
		resp["skipped"] = true
		resp["reason"] = sr.Reason
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/builds/"+sr.ID)
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(resp)
}

func (a *API) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("preslist.build.id", id))

	run, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get build run", "id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	span.SetAttributes(attribute.String("preslist.build.status", string(run.Status)))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(run)
}
