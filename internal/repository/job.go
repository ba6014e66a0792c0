package repository

import (
	"context"

	"taxdocpipeline/internal/models"
	"taxdocpipeline/pkg/database"
)

type JobRepository struct{}

func NewJobRepository() *JobRepository {
	return &JobRepository{}
}

func (r *JobRepository) Create(job *models.Job) error {
	return database.GetDB().Create(job).Error
}

func (r *JobRepository) FindByID(id string) (*models.Job, error) {
	return r.FindByIDCtx(context.Background(), id)
}

func (r *JobRepository) FindByIDCtx(ctx context.Context, id string) (*models.Job, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var job models.Job
	err := database.GetDB().WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(job *models.Job) error {
	return database.GetDB().Save(job).Error
}

func (r *JobRepository) FindAllCtx(ctx context.Context) ([]models.Job, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var jobs []models.Job
	err := database.GetDB().WithContext(ctx).Order("created_at desc").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) CreateOutcome(outcome *models.JobOutcome) error {
	return database.GetDB().Create(outcome).Error
}

func (r *JobRepository) FindOutcomesByJobIDCtx(ctx context.Context, jobID string) ([]models.JobOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var outcomes []models.JobOutcome
	err := database.GetDB().WithContext(ctx).Where("job_id = ?", jobID).Find(&outcomes).Error
	return outcomes, err
}

func (r *JobRepository) FindNeedsUIOutcomesCtx(ctx context.Context, jobID string) ([]models.JobOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var outcomes []models.JobOutcome
	err := database.GetDB().WithContext(ctx).
		Where("job_id = ? AND needs_ui_code != '' AND resolved = 0", jobID).
		Find(&outcomes).Error
	return outcomes, err
}

func (r *JobRepository) FindOutcomeByIDCtx(ctx context.Context, outcomeID uint) (*models.JobOutcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var outcome models.JobOutcome
	err := database.GetDB().WithContext(ctx).Where("id = ?", outcomeID).First(&outcome).Error
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (r *JobRepository) ResolveOutcomeCtx(ctx context.Context, outcomeID uint, filename string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return database.GetDB().WithContext(ctx).
		Model(&models.JobOutcome{}).
		Where("id = ?", outcomeID).
		Updates(map[string]interface{}{"resolved": 1, "filename": filename}).Error
}
