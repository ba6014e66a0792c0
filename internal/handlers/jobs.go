package handlers

import (
	"context"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"taxdocpipeline/internal/middleware"
	"taxdocpipeline/internal/pipeline"
	"taxdocpipeline/internal/services"
	"taxdocpipeline/internal/utils"
)

type JobsHandler struct {
	jobService *services.JobService
}

func NewJobsHandler(jobService *services.JobService) *JobsHandler {
	return &JobsHandler{jobService: jobService}
}

func (h *JobsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", middleware.RequireOperator(), h.CreateJob)
	r.GET("", h.ListJobs)
	r.GET("/:id", h.GetJob)
	r.GET("/:id/audit-log", h.GetAuditLog)
	r.GET("/:id/needs-ui", h.ListNeedsUI)
	r.POST("/:id/needs-ui/:outcomeId/resolve", middleware.RequireOperator(), h.ResolveNeedsUI)
	r.GET("/:id/outcomes", h.ListOutcomes)
	r.GET("/:id/outcomes/:outcomeId/file", h.DownloadOutcomeFile)
}

// CreateJob accepts a multipart upload of one or more PDF files together
// with the operator's jurisdiction sets and confirmed period, creates
// the job record, and runs the pipeline against the uploaded files in
// the background.
func (h *JobsHandler) CreateJob(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.Error(c, 400, "multipart form with at least one file is required", err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		utils.Error(c, 400, "at least one PDF file is required", nil)
		return
	}

	var jurisdictions []services.JurisdictionInput
	prefectures := c.PostFormArray("prefecture")
	cities := c.PostFormArray("city")
	for i, pref := range prefectures {
		city := ""
		if i < len(cities) {
			city = cities[i]
		}
		jurisdictions = append(jurisdictions, services.JurisdictionInput{Prefecture: pref, City: city})
	}

	job, err := h.jobService.CreateJob(services.CreateJobInput{
		Source:        "upload",
		ConfirmedYYMM: c.PostForm("confirmed_yymm"),
		Jurisdictions: jurisdictions,
		CreatedBy:     middleware.GetUserID(c),
	})
	if err != nil {
		utils.Error(c, 400, "failed to create job", err)
		return
	}

	var inputs []pipeline.FileInput
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			utils.Error(c, 400, "could not open uploaded file "+fh.Filename, err)
			return
		}
		blob, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			utils.Error(c, 400, "could not read uploaded file "+fh.Filename, err)
			return
		}
		inputs = append(inputs, pipeline.FileInput{Path: fh.Filename, Blob: blob})
	}

	go func(jobID string, inputs []pipeline.FileInput) {
		if err := h.jobService.RunJob(context.Background(), jobID, inputs); err != nil {
			utils.Error(c, 500, "job run failed", err)
		}
	}(job.ID, inputs)

	c.JSON(202, gin.H{"success": true, "message": "job accepted", "job": job})
}

func (h *JobsHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobService.ListJobs()
	if err != nil {
		utils.Error(c, 500, "failed to list jobs", err)
		return
	}
	utils.SuccessData(c, jobs)
}

func (h *JobsHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Param("id"))
	if err != nil {
		utils.Error(c, 404, "job not found", err)
		return
	}
	utils.SuccessData(c, job)
}

func (h *JobsHandler) GetAuditLog(c *gin.Context) {
	entries := h.jobService.AuditLog(c.Param("id"))
	utils.SuccessData(c, gin.H{"entries": entries})
}

func (h *JobsHandler) ListNeedsUI(c *gin.Context) {
	outcomes, err := h.jobService.ListNeedsUI(c.Param("id"))
	if err != nil {
		utils.Error(c, 500, "failed to list needs-ui outcomes", err)
		return
	}
	utils.SuccessData(c, outcomes)
}

func (h *JobsHandler) ListOutcomes(c *gin.Context) {
	outcomes, err := h.jobService.ListOutcomes(c.Param("id"))
	if err != nil {
		utils.Error(c, 500, "failed to list outcomes", err)
		return
	}
	utils.SuccessData(c, outcomes)
}

// DownloadOutcomeFile streams the written output file for one resolved
// outcome, resolving its stored filename against the configured output
// directory so a crafted filename can never escape it.
func (h *JobsHandler) DownloadOutcomeFile(c *gin.Context) {
	outcomeID, err := strconv.ParseUint(c.Param("outcomeId"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "invalid outcome id", err)
		return
	}

	filename, err := h.jobService.OutcomeFilename(uint(outcomeID))
	if err != nil {
		utils.Error(c, 404, "outcome file not available", err)
		return
	}

	abs, err := resolveOutputFilePath(h.jobService.OutputDir(), filename)
	if err != nil {
		utils.Error(c, 400, "invalid output path", err)
		return
	}

	c.FileAttachment(abs, filename)
}

type ResolveNeedsUIInput struct {
	Code string `json:"code" binding:"required"`
	YYMM string `json:"yymm" binding:"required"`
}

func (h *JobsHandler) ResolveNeedsUI(c *gin.Context) {
	outcomeID, err := strconv.ParseUint(c.Param("outcomeId"), 10, 64)
	if err != nil {
		utils.Error(c, 400, "invalid outcome id", err)
		return
	}

	var input ResolveNeedsUIInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.Error(c, 400, "code and yymm are required", err)
		return
	}

	filename, err := h.jobService.ResolveNeedsUI(c.Param("id"), uint(outcomeID), input.Code, input.YYMM)
	if err != nil {
		utils.Error(c, 400, "failed to resolve", err)
		return
	}

	utils.SuccessData(c, gin.H{"filename": filename})
}
