package pipeline

import (
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"
)

// uiForcedCodes are classification codes for which the document's YYMM
// period can never be inferred from its own text; an operator must
// supply it through the UI before classification may proceed.
var uiForcedCodes = map[string]bool{
	"6001": true,
	"6002": true,
	"6003": true,
	"0000": true,
}

var yymmPattern = regexp.MustCompile(`^\d{4}$`)

// YYMMSource records where a job's confirmed period came from.
type YYMMSource string

const (
	YYMMSourceUI       YYMMSource = "UI"
	YYMMSourceUIForced YYMMSource = "UI_FORCED"
	YYMMSourceDetected YYMMSource = "DETECTED"
	YYMMSourceNone     YYMMSource = "NONE"
)

// ProcessingStats mirrors the counters a job reports to its operator:
// how many files were seen, how many finished, how many needed a
// bundle split, and how many period values came from the UI versus
// document heuristics.
type ProcessingStats struct {
	TotalFiles      int
	ProcessedFiles  int
	BundleSplits    int
	UIForcedFiles   int
	DetectedFiles   int
	ErrorFiles      int
	StartedAt       time.Time
	FinishedAt      time.Time
}

func (s ProcessingStats) ProcessingTime() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// JurisdictionSet is one prefecture/city pairing an operator entered
// for a job, in the order they entered it. SetIndex is 1-based and is
// the only thing the sequence allocator actually cares about.
type JurisdictionSet struct {
	SetIndex   int
	Prefecture string
	City       string
}

// JobContext is the single shared, mutex-protected piece of state for
// one processing job: the job's confirmed period, its jurisdiction
// sets, its running status, and its audit trail. Every component in
// the pipeline that needs job-scoped state reads it from here instead
// of threading its own copy through.
type JobContext struct {
	mu sync.Mutex

	JobID          string
	confirmedYYMM  string
	yymmSource     YYMMSource
	status         string
	sets           []JurisdictionSet
	stats          ProcessingStats
	errorMessages  []string
	auditLog       []string
	createdAt      time.Time
	updatedAt      time.Time
}

func NewJobContext(jobID string) *JobContext {
	now := time.Now()
	jc := &JobContext{
		JobID:      jobID,
		yymmSource: YYMMSourceNone,
		status:     "INITIALIZED",
		createdAt:  now,
		updatedAt:  now,
	}
	jc.appendAudit(fmt.Sprintf("JobContext initialized: job_id=%s", jobID))
	return jc
}

func (jc *JobContext) appendAudit(msg string) {
	jc.auditLog = append(jc.auditLog, fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339Nano), msg))
}

// AuditLog returns a copy of the job's audit trail.
func (jc *JobContext) AuditLog() []string {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	out := make([]string, len(jc.auditLog))
	copy(out, jc.auditLog)
	return out
}

func validYYMM(yymm string) bool {
	if !yymmPattern.MatchString(yymm) {
		return false
	}
	year := int(yymm[0]-'0')*10 + int(yymm[1]-'0')
	month := int(yymm[2]-'0')*10 + int(yymm[3]-'0')
	return year >= 1 && year <= 99 && month >= 1 && month <= 12
}

// SetConfirmedYYMM is the sole entry point for changing a job's
// confirmed period. Every other component reads the period back
// through GetYYMMForClassification rather than tracking its own copy.
func (jc *JobContext) SetConfirmedYYMM(yymm string, source YYMMSource, reason string) error {
	normalized := NormalizeUIYYMM(yymm)
	if !validYYMM(normalized) {
		return fmt.Errorf("invalid YYMM format: %q", yymm)
	}
	jc.mu.Lock()
	defer jc.mu.Unlock()

	old := jc.confirmedYYMM
	jc.confirmedYYMM = normalized
	jc.yymmSource = source
	jc.updatedAt = time.Now()

	msg := fmt.Sprintf("YYMM confirmed: %s -> %s (source=%s)", old, normalized, source)
	if reason != "" {
		msg += " reason=" + reason
	}
	jc.appendAudit(msg)
	log.Printf("[JOB_CONTEXT] %s", msg)
	return nil
}

// GetYYMMForClassification returns the job's confirmed period for a
// given classification code, enforcing that UI-forced codes never
// proceed without an operator-confirmed value.
func (jc *JobContext) GetYYMMForClassification(code string) (string, error) {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	code4 := code
	if len(code4) > 4 {
		code4 = code4[:4]
	}
	if uiForcedCodes[code4] {
		if jc.confirmedYYMM == "" || (jc.yymmSource != YYMMSourceUI && jc.yymmSource != YYMMSourceUIForced) {
			return "", fmt.Errorf("[FATAL][JOB_CONTEXT] UI YYMM required but missing for %s (confirmed=%q source=%s)",
				code4, jc.confirmedYYMM, jc.yymmSource)
		}
	}
	return jc.confirmedYYMM, nil
}

// UpdateStatus transitions the job's status, appending an audit entry.
func (jc *JobContext) UpdateStatus(status, message string) {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	old := jc.status
	jc.status = status
	jc.updatedAt = time.Now()
	msg := fmt.Sprintf("Status change: %s -> %s", old, status)
	if message != "" {
		msg += " (" + message + ")"
	}
	jc.appendAudit(msg)
	log.Printf("[JOB_CONTEXT] %s", msg)
}

func (jc *JobContext) Status() string {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.status
}

func (jc *JobContext) AddError(message string) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.errorMessages = append(jc.errorMessages, message)
	jc.appendAudit("ERROR: " + message)
	log.Printf("[JOB_CONTEXT] %s", message)
}

func (jc *JobContext) StartProcessing(totalFiles int) {
	jc.mu.Lock()
	jc.stats.TotalFiles = totalFiles
	jc.stats.StartedAt = time.Now()
	jc.mu.Unlock()
	jc.UpdateStatus("PROCESSING", fmt.Sprintf("started processing %d files", totalFiles))
}

func (jc *JobContext) CompleteProcessing(success bool) {
	jc.mu.Lock()
	jc.stats.FinishedAt = time.Now()
	jc.mu.Unlock()

	status := "COMPLETED"
	if !success {
		status = "FAILED"
	}
	jc.mu.Lock()
	msg := fmt.Sprintf("processed %d/%d files in %s", jc.stats.ProcessedFiles, jc.stats.TotalFiles, jc.stats.ProcessingTime())
	jc.mu.Unlock()
	jc.UpdateStatus(status, msg)
}

func (jc *JobContext) IncrementProcessedFiles() {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.stats.ProcessedFiles++
}

func (jc *JobContext) IncrementBundleSplits() {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.stats.BundleSplits++
}

func (jc *JobContext) IncrementUIForcedFiles() {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.stats.UIForcedFiles++
}

func (jc *JobContext) IncrementDetectedFiles() {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.stats.DetectedFiles++
}

func (jc *JobContext) IncrementErrorFiles() {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.stats.ErrorFiles++
}

func (jc *JobContext) Stats() ProcessingStats {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	return jc.stats
}

// SetJurisdictionSets installs the operator-entered prefecture/city
// list for this job. SetIndex is assigned by entry order, 1-based.
func (jc *JobContext) SetJurisdictionSets(sets []JurisdictionSet) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	jc.sets = make([]JurisdictionSet, len(sets))
	copy(jc.sets, sets)
}

// ValidateTokyoConstraint enforces that when Tokyo appears among a
// job's jurisdiction sets, it occupies set #1. Any other position is a
// fatal, job-aborting configuration error rather than something the
// sequence allocator can route around.
func (jc *JobContext) ValidateTokyoConstraint() error {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	for _, s := range jc.sets {
		if s.Prefecture == "東京都" && s.SetIndex != 1 {
			return fmt.Errorf("[FATAL] Tokyo must be Set #1 (found at Set #%d)", s.SetIndex)
		}
	}
	return nil
}

// SetIndexForPref returns the 1-based entry order of a prefecture among
// this job's jurisdiction sets.
func (jc *JobContext) SetIndexForPref(prefecture string) (int, bool) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	for _, s := range jc.sets {
		if s.Prefecture == prefecture {
			return s.SetIndex, true
		}
	}
	return 0, false
}

// SetIndexForCity returns the 1-based entry order of a prefecture/city
// pairing among this job's jurisdiction sets.
func (jc *JobContext) SetIndexForCity(prefecture, city string) (int, bool) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	for _, s := range jc.sets {
		if s.Prefecture == prefecture && s.City == city {
			return s.SetIndex, true
		}
	}
	return 0, false
}

// SetForName looks up the jurisdiction set matching a free-text name
// inferred from a document's own text, which may have matched either a
// prefecture or a city depending on which string the snapshot builder's
// pattern found. Prefecture is checked first since a job's sets are
// rarely ambiguous between the two.
func (jc *JobContext) SetForName(name string) (JurisdictionSet, bool) {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	for _, s := range jc.sets {
		if s.Prefecture == name {
			return s, true
		}
	}
	for _, s := range jc.sets {
		if s.City == name {
			return s, true
		}
	}
	return JurisdictionSet{}, false
}

// CityForSet returns the city recorded for a given set index, or ""
// when that set has no city (as Tokyo typically doesn't).
func (jc *JobContext) CityForSet(setIndex int) string {
	jc.mu.Lock()
	defer jc.mu.Unlock()
	for _, s := range jc.sets {
		if s.SetIndex == setIndex {
			return s.City
		}
	}
	return ""
}
