package build

import (
	"context"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/preslist/internal/docstore"
	"github.com/linnemanlabs/preslist/internal/preslist"
	"github.com/oklog/ulid/v2"
)

// Notifier is told about every finished run.
type Notifier interface {
	Send(ctx context.Context, run *Run) error
}

// Runner executes a build over a snapshot. *preslist.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, snap *preslist.Snapshot, opts preslist.Options) (*preslist.RunResult, error)
}

// SubmitResult is the outcome of submitting a build request.
type SubmitResult struct {
	ID      string
	Skipped bool
	Reason  string
}

// Service is the business boundary for build operations.
type Service struct {
	store       Store
	docs        docstore.Store
	engine      Runner
	logger      log.Logger
	metrics     *Metrics
	notifier    Notifier
	concurrency int
}

// NewService creates a new build service. metrics and notifier may be nil.
func NewService(store Store, docs docstore.Store, engine Runner, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	return &Service{
		store:       store,
		docs:        docs,
		engine:      engine,
		logger:      logger,
		metrics:     metrics,
		notifier:    notifier,
		concurrency: 1,
	}
}

// SetConcurrency sets how many members each build renders in parallel.
func (s *Service) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// Submit accepts a build request, handling dedup and lifecycle. The build
// itself runs asynchronously; poll Get with the returned ID.
func (s *Service) Submit(ctx context.Context, req Request) (*SubmitResult, error) {
	fp := req.Fingerprint()

	// dedup: skip if an identical build is already pending or in progress
	if existing, ok, err := s.store.GetByFingerprint(ctx, fp); err != nil {
		return nil, err
	} else if ok && (existing.Status == StatusPending || existing.Status == StatusInProgress) {
		s.metrics.submit("duplicate")
		return &SubmitResult{ID: existing.ID, Skipped: true, Reason: "duplicate"}, nil
	}

	run, err := s.create(ctx, req, fp)
	if err != nil {
		return nil, err
	}
	s.metrics.submit("accepted")

	// kick off async build - pass only the ID to avoid sharing the Run pointer.
	go s.runBuild(context.WithoutCancel(ctx), run.ID)

	return &SubmitResult{ID: run.ID}, nil
}

// Execute runs a build synchronously and returns the finished record.
// A failed build is reported both in the record and as the returned error.
func (s *Service) Execute(ctx context.Context, req Request) (*Run, error) {
	run, err := s.create(ctx, req, req.Fingerprint())
	if err != nil {
		return nil, err
	}
	s.runBuild(ctx, run.ID)

	done, ok, err := s.store.Get(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("build %s vanished from store", run.ID)
	}
	if done.Status == StatusFailed {
		return done, fmt.Errorf("build %s failed: %s", done.ID, done.Error)
	}
	return done, nil
}

// Get retrieves a build run by ID.
func (s *Service) Get(ctx context.Context, id string) (*Run, bool, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) create(ctx context.Context, req Request, fp string) (*Run, error) {
	run := &Run{
		ID:          ulid.Make().String(),
		Fingerprint: fp,
		Status:      StatusPending,
		Request:     req,
		CreatedAt:   time.Now(),
	}
	if err := s.store.Put(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Service) runBuild(ctx context.Context, id string) {
	L := s.logger.With("build_id", id)

	run, ok, err := s.store.Get(ctx, id)
	if err != nil || !ok {
		L.Error(ctx, err, "failed to fetch run for build")
		return
	}

	run.Status = StatusInProgress
	if err := s.store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to update status to in_progress")
		return
	}

	start := time.Now()
	rr, err := s.execute(ctx, run.Request)
	if rr != nil {
		run.Outputs = rr.Outputs
		run.Skipped = len(rr.Skipped)
		run.Warnings = rr.Warnings
	}
	run.Status = StatusComplete
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		L.Error(ctx, err, "build failed")
	}
	run.CompletedAt = time.Now()
	run.Duration = time.Since(start).Seconds()

	if err := s.store.Put(ctx, run); err != nil {
		L.Error(ctx, err, "failed to persist build result")
	}
	s.metrics.observe(run)

	L.Info(ctx, "build complete",
		"status", run.Status,
		"duration", run.Duration,
		"outputs", len(run.Outputs),
		"documents", run.Documents(),
		"warnings", len(run.Warnings),
	)

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, run); err != nil {
			L.Error(ctx, err, "failed to send notification")
		}
	}
}

func (s *Service) execute(ctx context.Context, req Request) (*preslist.RunResult, error) {
	snap, err := preslist.Load(ctx, s.docs, s.logger)
	if err != nil {
		return nil, err
	}
	return s.engine.Run(ctx, snap, req.Options(s.concurrency))
}
