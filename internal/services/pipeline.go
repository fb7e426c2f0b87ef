package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/canonical/sosreport-agent/internal/models"
	"github.com/canonical/sosreport-agent/internal/store"
	"github.com/canonical/sosreport-agent/internal/uploader"
)

// ErrModelRequired is returned when neither the request nor the
// configuration names a model.
var ErrModelRequired = errors.New("model name is required: pass model-name in the request or set a default in the configuration")

// NodeResolver resolves operator selectors into node addresses.
type NodeResolver interface {
	Resolve(ctx context.Context, modelName string, selectors models.Selectors) (sets.Set[string], error)
}

// Collector runs the external collection tool and discovers its reports.
type Collector interface {
	Collect(ctx context.Context, nodes sets.Set[string], caseID, extraArgs string) error
	Reports(caseID string) ([]string, error)
}

// Cleaner removes local report files.
type Cleaner interface {
	Cleanup(files []string) models.CleanupReport
}

// CollectRequest carries the parameters of one collect action.
type CollectRequest struct {
	CaseID    string
	Model     string
	Selectors models.Selectors
	ExtraArgs string
}

// Pipeline is the collection-and-delivery flow behind the action surface.
// Each action runs to completion (or first fatal failure) before returning;
// concurrent actions on the same case id are the operator's problem to
// avoid.
type Pipeline struct {
	resolver  NodeResolver
	collector Collector
	uploader  uploader.Uploader
	cleaner   Cleaner
	store     *store.Store

	defaultModel   string
	collectTimeout time.Duration
}

func NewPipeline(resolver NodeResolver, collector Collector, up uploader.Uploader, cleaner Cleaner, st *store.Store, defaultModel string, collectTimeout time.Duration) *Pipeline {
	return &Pipeline{
		resolver:       resolver,
		collector:      collector,
		uploader:       up,
		cleaner:        cleaner,
		store:          st,
		defaultModel:   defaultModel,
		collectTimeout: collectTimeout,
	}
}

// Collect resolves the target nodes, runs sos collect against them and
// returns the paths of the reports it produced.
func (p *Pipeline) Collect(ctx context.Context, req CollectRequest) ([]string, error) {
	run := newRun(models.RunActionCollect, req.CaseID)

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	if model == "" {
		return nil, p.finish(ctx, run, ErrModelRequired)
	}
	run.Model = model

	nodes, err := p.resolver.Resolve(ctx, model, req.Selectors)
	if err != nil {
		return nil, p.finish(ctx, run, err)
	}
	run.Nodes = sets.List(nodes)

	collectCtx := ctx
	if p.collectTimeout > 0 {
		var cancel context.CancelFunc
		collectCtx, cancel = context.WithTimeout(ctx, p.collectTimeout)
		defer cancel()
	}
	if err := p.collector.Collect(collectCtx, nodes, req.CaseID, req.ExtraArgs); err != nil {
		return nil, p.finish(ctx, run, err)
	}

	reports, err := p.collector.Reports(req.CaseID)
	if err != nil {
		return nil, p.finish(ctx, run, err)
	}
	for _, r := range reports {
		run.Files = append(run.Files, models.FileOutcome{LocalPath: r, OK: true})
	}
	return reports, p.finish(ctx, run, nil)
}

// Upload ships every report matching the case id over one transfer
// session. When cleanup is requested and every transfer succeeded, the
// local copies are removed as well.
func (p *Pipeline) Upload(ctx context.Context, caseID string, cleanup bool) (models.UploadReport, *models.CleanupReport, error) {
	run := newRun(models.RunActionUpload, caseID)

	files, err := p.collector.Reports(caseID)
	if err != nil {
		return models.UploadReport{}, nil, p.finish(ctx, run, err)
	}

	report, err := p.uploader.Upload(ctx, files)
	if err != nil {
		return models.UploadReport{}, nil, p.finish(ctx, run, err)
	}
	for _, r := range report.Results {
		run.Files = append(run.Files, models.FileOutcome{
			LocalPath:  r.LocalPath,
			RemotePath: r.RemotePath,
			OK:         r.Uploaded,
			Detail:     r.Error,
		})
	}
	run.Success = report.Success

	var cleanupReport *models.CleanupReport
	if report.Success && cleanup {
		cr := p.cleaner.Cleanup(files)
		cleanupReport = &cr
	}

	p.record(ctx, run)
	return report, cleanupReport, nil
}

// Cleanup removes every local report matching the case id.
func (p *Pipeline) Cleanup(ctx context.Context, caseID string) (models.CleanupReport, error) {
	run := newRun(models.RunActionCleanup, caseID)

	files, err := p.collector.Reports(caseID)
	if err != nil {
		return models.CleanupReport{}, p.finish(ctx, run, err)
	}

	report := p.cleaner.Cleanup(files)
	run.Success = report.Success
	for _, r := range report.Results {
		run.Files = append(run.Files, models.FileOutcome{LocalPath: r.Path, OK: r.Removed, Detail: r.Error})
	}
	p.record(ctx, run)
	return report, nil
}

// Runs returns the persisted run history, newest first.
func (p *Pipeline) Runs(ctx context.Context) ([]models.Run, error) {
	return p.store.Runs().List(ctx)
}

// Run returns one persisted run by id.
func (p *Pipeline) Run(ctx context.Context, id string) (*models.Run, error) {
	return p.store.Runs().Get(ctx, id)
}

func newRun(action models.RunAction, caseID string) *models.Run {
	return &models.Run{
		ID:        uuid.New().String(),
		Action:    action,
		CaseID:    caseID,
		StartedAt: time.Now().UTC(),
	}
}

// finish stamps the run with its outcome, persists it and passes the error
// through unchanged.
func (p *Pipeline) finish(ctx context.Context, run *models.Run, err error) error {
	run.Success = err == nil
	if err != nil {
		run.Error = err.Error()
	}
	p.record(ctx, run)
	return err
}

// record persists the run. History is an aid to the operator, not part of
// the pipeline contract, so a store failure is logged rather than turned
// into an action failure.
func (p *Pipeline) record(ctx context.Context, run *models.Run) {
	run.FinishedAt = time.Now().UTC()
	if err := p.store.Runs().Save(ctx, run); err != nil {
		zap.S().Warnw("failed to record run", "run", run.ID, "action", run.Action, "error", err)
	}
}
