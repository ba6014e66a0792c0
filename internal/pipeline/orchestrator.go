package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"taxdocpipeline/internal/models"
	"taxdocpipeline/pkg/pdfio"
)

// FileInput is one source PDF handed to the orchestrator, whatever its
// origin - a local-directory scan or the mailbox intake source. Both
// just produce (path, bytes) pairs and share the same per-file pipeline.
type FileInput struct {
	Path string
	Blob []byte
}

// Outcome is the per-Doc-Item result the orchestrator reports back to
// the job: either a written filename, or a deferred NEEDS_UI item, or
// an error.
type Outcome struct {
	SourcePath string
	DocItemID  models.DocItemID
	Filename   string
	Data       []byte
	NeedsUI    *NeedsUserInputError
	Err        error
}

// Orchestrator wires the Snapshot Store, Bundle Splitter, Classifier,
// Domain Resolver, Overlay Engine, Sequence Allocator, Period Resolver,
// and Naming Composer into the per-file algorithm: one file processed
// sequentially page-by-page, with up to WorkerCount files in flight
// across a job at once.
type Orchestrator struct {
	JobCtx      *JobContext
	Sequencer   *Sequencer
	Snapshots   *SnapshotStore
	OutputDir   string
	WorkerCount int

	OCREnabled  bool
	OCRLanguage string
	OCRMinChars int
}

func NewOrchestrator(jc *JobContext, outputDir string, snapshotDir string, workerCount int) *Orchestrator {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Orchestrator{
		JobCtx:      jc,
		Sequencer:   NewSequencer(jc),
		Snapshots:   NewSnapshotStore(snapshotDir),
		OutputDir:   outputDir,
		WorkerCount: workerCount,
		OCRMinChars: 20,
		OCRLanguage: "jpn",
	}
}

// WithOCR turns on the rasterize+Tesseract fallback for pages whose
// extracted text comes back shorter than minChars.
func (o *Orchestrator) WithOCR(enabled bool, language string, minChars int) *Orchestrator {
	o.OCREnabled = enabled
	if language != "" {
		o.OCRLanguage = language
	}
	if minChars > 0 {
		o.OCRMinChars = minChars
	}
	return o
}

// Run processes every file in inputs, bounded to WorkerCount concurrent
// files; each file's pages are processed strictly sequentially so page
// ordering (ascending page_index) and the audit log stay deterministic
// per file. ctx cancellation is honored at page boundaries.
func (o *Orchestrator) Run(ctx context.Context, inputs []FileInput) []Outcome {
	o.JobCtx.StartProcessing(len(inputs))

	outcomes := make([]Outcome, len(inputs))
	sem := make(chan struct{}, o.WorkerCount)
	var wg sync.WaitGroup

	for i, in := range inputs {
		select {
		case <-ctx.Done():
			outcomes[i] = Outcome{SourcePath: in.Path, Err: ctx.Err()}
			continue
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in FileInput) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = o.processFile(ctx, in)
		}(i, in)
	}
	wg.Wait()

	success := true
	outputNames := map[string]bool{}
	for _, oc := range outcomes {
		if oc.Err != nil {
			o.JobCtx.IncrementErrorFiles()
			success = false
			continue
		}
		if oc.NeedsUI != nil {
			continue
		}
		outputNames[oc.Filename] = true
	}
	o.JobCtx.CompleteProcessing(success)
	return outcomes
}

// processFile runs the full per-file algorithm: open, snapshot, decide
// bundle-or-not, classify each Doc Item, overlay, sequence, resolve
// period, compose name, write atomically.
func (o *Orchestrator) processFile(ctx context.Context, in FileInput) Outcome {
	doc, err := pdfio.Open(in.Path)
	if err != nil {
		return Outcome{SourcePath: in.Path, Err: fmt.Errorf("SourceUnreadable: %w", err)}
	}
	defer doc.Close()

	sourceDocMD5 := ComputeFileMD5(in.Blob)

	pages := make([]PageInput, 0, doc.PageCount())
	for p := 0; p < doc.PageCount(); p++ {
		select {
		case <-ctx.Done():
			return Outcome{SourcePath: in.Path, Err: ctx.Err()}
		default:
		}

		raw, err := doc.PageText(p)
		if err != nil {
			return Outcome{SourcePath: in.Path, Err: fmt.Errorf("SourceUnreadable: page %d: %w", p, err)}
		}
		norm := NormalizeText(raw)

		if o.OCREnabled && len([]rune(norm)) < o.OCRMinChars {
			if ocrText, ok := o.runOCR(doc, p, in.Path); ok {
				norm = NormalizeText(ocrText)
			}
		}

		if IsBlankPage(norm, filepath.Base(in.Path)) {
			continue
		}

		fp := models.PageFingerprint{
			SourceDocMD5: sourceDocMD5,
			PageIndex:    p,
			PageMD5:      ComputePageMD5([]byte(norm)),
		}
		pages = append(pages, PageInput{Fingerprint: fp, NormText: norm})
	}

	var items []models.DocItem
	if IsBundle(pages) {
		items = SplitBundle(sourceDocMD5, pages)
		o.JobCtx.IncrementBundleSplits()
	} else {
		items = []models.DocItem{SingleDocItem(sourceDocMD5, pages)}
	}

	var lastOutcome Outcome
	for _, item := range items {
		lastOutcome = o.processDocItem(in.Path, sourceDocMD5, item, in.Blob)
		if lastOutcome.Err != nil || lastOutcome.NeedsUI != nil {
			return lastOutcome
		}
	}
	o.JobCtx.IncrementProcessedFiles()
	return lastOutcome
}

// runOCR rasterizes a textless page and runs it through the Tesseract
// fallback, logging and continuing with the original (empty) text on
// any failure rather than aborting the whole file over one bad page.
func (o *Orchestrator) runOCR(doc pdfio.Document, pageIndex int, sourcePath string) (string, bool) {
	png, err := doc.RasterizePNG(pageIndex)
	if err != nil {
		log.Printf("[ORCHESTRATOR] OCR rasterization failed for %s page %d: %v", sourcePath, pageIndex, err)
		return "", false
	}
	text, err := pdfio.OCRFallback(png, o.OCRLanguage)
	if err != nil {
		log.Printf("[ORCHESTRATOR] OCR fallback failed for %s page %d: %v", sourcePath, pageIndex, err)
		return "", false
	}
	return text, true
}

func (o *Orchestrator) processDocItem(sourcePath, sourceDocMD5 string, item models.DocItem, sourceBlob []byte) Outcome {
	snap, err := BuildSnapshot(o.Snapshots, sourceDocMD5, item)
	if err != nil {
		return Outcome{SourcePath: sourcePath, DocItemID: item.ID, Err: err}
	}

	filename, yymmSource, err := o.ComposeFilename(snap, item)
	if err != nil {
		if needsUI, ok := err.(*NeedsUserInputError); ok {
			return Outcome{SourcePath: sourcePath, DocItemID: item.ID, NeedsUI: needsUI}
		}
		return Outcome{SourcePath: sourcePath, DocItemID: item.ID, Err: err}
	}

	if yymmSource == PeriodSourceDetected {
		o.JobCtx.IncrementDetectedFiles()
	} else if yymmSource == PeriodSourceUIForced {
		o.JobCtx.IncrementUIForcedFiles()
	}

	log.Printf("[ORCHESTRATOR] triple-consistency: display_code=%s final_filename=%s yymm_source=%s",
		snap.Inferred.Code, filename, yymmSource)

	data := o.extractItemBytes(sourcePath, item, sourceBlob)
	return Outcome{SourcePath: sourcePath, DocItemID: item.ID, Filename: filename, Data: data}
}

// extractItemBytes trims sourcePath down to item's own page range via
// pdfcpu so a split bundle's Doc Items each write out their own pages
// rather than the whole source file. Falls back to sourceBlob - the
// bundle's full bytes - on any trim failure or when the item carries no
// page fingerprints to range over, which keeps the output file
// non-empty even if the page-range extraction itself can't run.
func (o *Orchestrator) extractItemBytes(sourcePath string, item models.DocItem, sourceBlob []byte) []byte {
	if len(item.Pages) == 0 {
		return sourceBlob
	}
	start := item.Pages[0].PageIndex + 1
	end := item.Pages[len(item.Pages)-1].PageIndex + 1
	data, err := pdfio.ExtractPageRange(sourcePath, start, end)
	if err != nil {
		log.Printf("[ORCHESTRATOR] page-range extraction failed for %s pages %d-%d, writing full source instead: %v",
			sourcePath, start, end, err)
		return sourceBlob
	}
	return data
}

// ComposeFilename runs the classify -> domain -> overlay -> sequence ->
// period -> naming chain for one Doc Item's snapshot.
func (o *Orchestrator) ComposeFilename(snap *models.Snapshot, item models.DocItem) (string, PeriodSource, error) {
	classifyResult := Classify(snap.NormText, "")

	setCtx := SetContext{}
	if hint := snap.Inferred.MunicipalCode; hint != "" {
		if set, ok := o.JobCtx.SetForName(hint); ok {
			setCtx = SetContext{Prefecture: set.Prefecture, City: set.City, SetIndex: set.SetIndex}
		}
	}
	overlay := ApplyOverlay(classifyResult.DisplayCode(), setCtx)

	period, err := ResolvePeriod(o.JobCtx, classifyResult.DisplayCode(), DetectPeriodFromText(snap.NormText))
	if err != nil {
		return "", PeriodSourceNone, err
	}
	if period.YYMM == "" {
		return "", PeriodSourceNone, &NeedsUserInputError{Code: classifyResult.DisplayCode(), Field: "YYMM"}
	}

	namingCtx := NamingContext{
		Prefecture: setCtx.Prefecture,
		City:       setCtx.City,
	}
	filename, err := BuildFilename(overlay.Code, classifyResult.DisplayCode(), period.YYMM, namingCtx)
	if err != nil {
		return "", period.Source, err
	}
	return filename, period.Source, nil
}

// WriteOutput writes data to the job's output directory under name,
// using the atomic temp-then-rename pattern, after resolving any
// filename collision against names already written this run.
func (o *Orchestrator) WriteOutput(name string, data []byte, outputNames map[string]bool) (string, error) {
	final := ResolveCollision(name, outputNames)
	outputNames[final] = true

	if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
		return "", err
	}
	destPath := filepath.Join(o.OutputDir, final)
	tmpPath := destPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return "", err
	}
	return final, nil
}
