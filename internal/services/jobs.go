package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"taxdocpipeline/internal/config"
	"taxdocpipeline/internal/models"
	"taxdocpipeline/internal/pipeline"
	"taxdocpipeline/internal/repository"
	"taxdocpipeline/internal/utils"
)

// JobService owns the lifecycle of a processing job: creating its
// persisted record, running the pipeline orchestrator against it, and
// answering status/needs-UI queries. Each active job keeps its
// in-memory JobContext alive in runningJobs for the duration of the
// run; the persisted Job row is the durable summary an operator
// queries after the process restarts.
type JobService struct {
	jobRepo *repository.JobRepository
	cfg     *config.Config

	mu         sync.Mutex
	runningJCs map[string]*pipeline.JobContext
}

func NewJobService(cfg *config.Config) *JobService {
	return &JobService{
		jobRepo:    repository.NewJobRepository(),
		cfg:        cfg,
		runningJCs: make(map[string]*pipeline.JobContext),
	}
}

// JurisdictionInput is the operator-entered prefecture/city pairing for
// one jurisdiction set, in the order the operator wants them numbered.
type JurisdictionInput struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
}

// CreateJobInput is the full set of operator-supplied inputs a new job
// requires before processing can begin.
type CreateJobInput struct {
	Source        string              `json:"source"`
	ConfirmedYYMM string              `json:"confirmed_yymm"`
	Jurisdictions []JurisdictionInput `json:"jurisdictions"`
	CreatedBy     string              `json:"-"`
}

// CreateJob persists a new job row, builds its JobContext (applying the
// confirmed YYMM and jurisdiction sets), and validates the Tokyo
// constraint before any file is touched.
func (s *JobService) CreateJob(input CreateJobInput) (*models.Job, error) {
	id := utils.GenerateUUID()
	job := &models.Job{
		ID:        id,
		Status:    "INITIALIZED",
		Source:    input.Source,
		CreatedBy: input.CreatedBy,
	}
	if job.Source == "" {
		job.Source = "upload"
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, err
	}

	jc := pipeline.NewJobContext(id)

	var sets []pipeline.JurisdictionSet
	for i, j := range input.Jurisdictions {
		sets = append(sets, pipeline.JurisdictionSet{
			SetIndex:   i + 1,
			Prefecture: j.Prefecture,
			City:       j.City,
		})
	}
	jc.SetJurisdictionSets(sets)
	if err := jc.ValidateTokyoConstraint(); err != nil {
		job.Status = "FAILED"
		_ = s.jobRepo.Update(job)
		return job, fmt.Errorf("TokyoConstraintViolation: %w", err)
	}

	if input.ConfirmedYYMM != "" {
		if err := jc.SetConfirmedYYMM(input.ConfirmedYYMM, pipeline.YYMMSourceUI, "operator-supplied at job creation"); err != nil {
			job.Status = "FAILED"
			_ = s.jobRepo.Update(job)
			return job, fmt.Errorf("InvalidPeriod: %w", err)
		}
	}

	s.mu.Lock()
	s.runningJCs[id] = jc
	s.mu.Unlock()

	return job, nil
}

// RunJob runs the orchestrator against inputs synchronously, persisting
// the resulting outcomes and final job status. Callers that want
// fire-and-forget processing should invoke this in a goroutine.
func (s *JobService) RunJob(ctx context.Context, jobID string, inputs []pipeline.FileInput) error {
	jc, ok := s.jobContext(jobID)
	if !ok {
		return fmt.Errorf("job %s has no active context", jobID)
	}

	orch := pipeline.NewOrchestrator(jc, s.cfg.OutputDir, s.cfg.DataDir+"/snapshots", s.cfg.WorkerCount).
		WithOCR(s.cfg.OCREnabled, s.cfg.OCRLanguage, s.cfg.OCRMinChars)
	outcomes := orch.Run(ctx, inputs)

	outputNames := map[string]bool{}
	needsUI := 0
	for _, oc := range outcomes {
		record := &models.JobOutcome{
			JobID:      jobID,
			SourcePath: oc.SourcePath,
			DocItemID:  string(oc.DocItemID),
		}
		switch {
		case oc.Err != nil:
			record.ErrorMsg = oc.Err.Error()
		case oc.NeedsUI != nil:
			record.NeedsUICode = oc.NeedsUI.Code
			record.NeedsField = oc.NeedsUI.Field
			needsUI++
		default:
			final, err := orch.WriteOutput(oc.Filename, oc.Data, outputNames)
			if err != nil {
				record.ErrorMsg = err.Error()
			} else {
				record.Filename = final
			}
		}
		if err := s.jobRepo.CreateOutcome(record); err != nil {
			log.Printf("[JOBS] failed to persist outcome for job %s: %v", jobID, err)
		}
	}

	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return err
	}
	stats := jc.Stats()
	job.TotalFiles = stats.TotalFiles
	job.Processed = stats.ProcessedFiles
	job.ErrorCount = stats.ErrorFiles
	job.NeedsUI = needsUI
	job.Status = jc.Status()
	return s.jobRepo.Update(job)
}

func (s *JobService) jobContext(jobID string) (*pipeline.JobContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	jc, ok := s.runningJCs[jobID]
	return jc, ok
}

func (s *JobService) GetJob(jobID string) (*models.Job, error) {
	return s.jobRepo.FindByID(jobID)
}

func (s *JobService) ListJobs() ([]models.Job, error) {
	return s.jobRepo.FindAllCtx(context.Background())
}

// AuditLog returns the in-memory audit trail for a still-active job, or
// nil once the job's JobContext has been dropped from memory.
func (s *JobService) AuditLog(jobID string) []string {
	jc, ok := s.jobContext(jobID)
	if !ok {
		return nil
	}
	return jc.AuditLog()
}

func (s *JobService) ListNeedsUI(jobID string) ([]models.JobOutcome, error) {
	return s.jobRepo.FindNeedsUIOutcomesCtx(context.Background(), jobID)
}

// ListOutcomes returns every persisted outcome for a job, written or
// deferred or errored alike.
func (s *JobService) ListOutcomes(jobID string) ([]models.JobOutcome, error) {
	return s.jobRepo.FindOutcomesByJobIDCtx(context.Background(), jobID)
}

// OutcomeFilename returns the written output filename for one outcome,
// or an error if the outcome has no file yet (still NEEDS_UI or errored).
func (s *JobService) OutcomeFilename(outcomeID uint) (string, error) {
	outcome, err := s.jobRepo.FindOutcomeByIDCtx(context.Background(), outcomeID)
	if err != nil {
		return "", err
	}
	if outcome.Filename == "" {
		return "", fmt.Errorf("outcome %d has no written output file", outcomeID)
	}
	return outcome.Filename, nil
}

// OutputDir exposes the configured output directory so handlers can
// resolve an outcome's filename to a safe on-disk path.
func (s *JobService) OutputDir() string {
	return s.cfg.OutputDir
}

// ResolveNeedsUI supplies the missing YYMM for one deferred outcome,
// reruns the Period Resolver and Naming Composer for that Doc Item, and
// marks the outcome resolved.
func (s *JobService) ResolveNeedsUI(jobID string, outcomeID uint, code, yymm string) (string, error) {
	jc, ok := s.jobContext(jobID)
	if !ok {
		return "", fmt.Errorf("job %s has no active context", jobID)
	}

	if err := jc.SetConfirmedYYMM(yymm, pipeline.YYMMSourceUI, "needs-ui resolution"); err != nil {
		return "", fmt.Errorf("InvalidPeriod: %w", err)
	}

	period, err := pipeline.ResolvePeriod(jc, code, "")
	if err != nil {
		return "", err
	}
	filename, err := pipeline.BuildFilename(code, code, period.YYMM, pipeline.NamingContext{})
	if err != nil {
		return "", err
	}

	if err := s.jobRepo.ResolveOutcomeCtx(context.Background(), outcomeID, filename); err != nil {
		return "", err
	}
	return filename, nil
}
