// Package buildapi exposes build submission, run status and artifact
// download over HTTP.
package buildapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/preslist/internal/artifact"
	"github.com/linnemanlabs/preslist/internal/build"
)

// BuildService defines the business operations buildapi needs.
type BuildService interface {
	Submit(ctx context.Context, req build.Request) (*build.SubmitResult, error)
	Get(ctx context.Context, id string) (*build.Run, bool, error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger    log.Logger
	svc       BuildService
	artifacts artifact.Store
}

// New creates a new API handler.
func New(logger log.Logger, svc BuildService, artifacts artifact.Store) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("build service is required"))
	}
	if artifacts == nil {
		panic(xerrors.New("artifact store is required"))
	}
	return &API{
		logger:    logger,
		svc:       svc,
		artifacts: artifacts,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/builds", a.handleSubmitBuild)
		r.Get("/builds/{id}", a.handleGetBuild)
		r.Get("/artifacts", a.handleListArtifacts)
		r.Get("/artifacts/*", a.handleGetArtifact)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
