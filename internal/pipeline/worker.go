package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/doctrans/internal/analysis"
	"github.com/dgallion1/doctrans/internal/blobstore"
	"github.com/dgallion1/doctrans/internal/chunker"
	"github.com/dgallion1/doctrans/internal/images"
	"github.com/dgallion1/doctrans/internal/layout"
	"github.com/dgallion1/doctrans/internal/placeholder"
	"github.com/dgallion1/doctrans/internal/translate"
)

// Worker runs the translation pipeline for a single job: extract text,
// collect images, resolve figure spans, substitute placeholders, chunk,
// translate, restore, persist.
type Worker struct {
	extractor  *analysis.Extractor
	collector  *images.Collector
	translator *translate.Orchestrator
	store      *blobstore.Client
	log        *slog.Logger
}

func NewWorker(extractor *analysis.Extractor, collector *images.Collector, translator *translate.Orchestrator, store *blobstore.Client, log *slog.Logger) *Worker {
	return &Worker{
		extractor:  extractor,
		collector:  collector,
		translator: translator,
		store:      store,
		log:        log,
	}
}

// Process runs the full translation pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)
	start := time.Now()

	data := job.FileData()
	job.SetContentHash(ContentHashHex(data))

	// Phase 1: Analyze document layout and extract text.
	job.SetStatus(StatusAnalyzing, "analyzing document")
	res, err := w.extractor.Extract(ctx, data, job.Filename)
	if err != nil {
		w.fail(job, log, StatusAnalyzing, fmt.Errorf("analyze: %w", err))
		return
	}
	if strings.TrimSpace(res.Content) == "" {
		w.fail(job, log, StatusAnalyzing, fmt.Errorf("no extractable text in %s", job.Filename))
		return
	}
	log.Info("document analyzed",
		"content_chars", len(res.Content),
		"figures", len(res.Figures),
		"paragraphs", len(res.Paragraphs),
		"remote", w.extractor.Remote())

	// Phase 2: Pull embedded images out of the binary and upload them.
	// Image failures degrade the output (missing references) but never
	// block the translation itself.
	job.SetStatus(StatusCollecting, "collecting images")
	imgs, err := w.collector.Collect(ctx, data, job.Filename, job.DocID)
	if err != nil {
		if ctx.Err() != nil {
			w.fail(job, log, StatusCollecting, ctx.Err())
			return
		}
		log.Warn("image collection failed, continuing without images", "error", err)
		job.AddError(fmt.Sprintf("images: %s", err))
		imgs = nil
	}
	log.Info("images collected", "count", len(imgs))

	// Phase 3: Resolve figure regions to merged content spans.
	job.SetStatus(StatusResolving, "resolving figure spans")
	spans := layout.Resolve(res, log)
	log.Info("figure spans resolved", "figures", len(res.Figures), "spans", len(spans))

	// Phase 4: Replace figure text with placeholder tokens.
	job.SetStatus(StatusSubstituting, "substituting placeholders")
	sub := placeholder.Substitute(res.Content, spans, imgs, log)
	if sub.UnpairedSpans > 0 || sub.AppendedImages > 0 {
		log.Warn("figure/image pairing incomplete",
			"unpaired_spans", sub.UnpairedSpans,
			"appended_images", sub.AppendedImages)
	}

	// Phase 5: Chunk along Markdown structure.
	job.SetStatus(StatusChunking, "splitting into chunks")
	chunks := chunker.Split(sub.Text, job.ChunkChars)
	log.Info("document chunked",
		"chunks", len(chunks),
		"estimated_tokens", chunker.EstimateTokens(sub.Text))

	// Phase 6: Translate all chunks.
	job.SetStatus(StatusTranslating, "translating")
	out, err := w.translator.TranslateAll(ctx, chunks, job.TargetLang)
	if err != nil {
		w.fail(job, log, StatusTranslating, fmt.Errorf("translate: %w", err))
		return
	}

	// Phase 7: Restore image markup in place of placeholder tokens.
	job.SetStatus(StatusRestoring, "restoring image references")
	restored, restoreStats := placeholder.Restore(out.Text, sub.Mapping, log)
	log.Info("placeholders restored",
		"exact", restoreStats.ExactMatches,
		"tolerant", restoreStats.TolerantMatches,
		"appended", restoreStats.Appended,
		"empty_markup", restoreStats.EmptyMarkup)

	// Phase 8: Persist the translated artifact.
	job.SetStatus(StatusStoring, "storing artifact")
	result := &Result{
		SourceChars:     len(res.Content),
		TranslatedChars: len(restored),
		Chunks:          len(chunks),
		InputTokens:     out.InputTokens,
		OutputTokens:    out.OutputTokens,
		Figures:         len(res.Figures),
		Images:          len(imgs),
		Placeholders:    sub.Ordinals,
		UnpairedFigures: sub.UnpairedSpans,
		AppendedImages:  sub.AppendedImages,
		Restore:         restoreStats,
	}

	key := fmt.Sprintf("%s/translated.%s.md", job.DocID, job.TargetLang)
	url, err := w.store.Put(ctx, key, []byte(restored), "text/markdown; charset=utf-8")
	if err != nil {
		// The translated text is still served from job state; only the
		// durable copy is missing.
		log.Error("artifact store failed", "key", key, "error", err)
		job.AddError(fmt.Sprintf("store artifact: %s", err))
	} else {
		result.ArtifactKey = key
		result.ArtifactURL = url
	}

	result.ElapsedMs = time.Since(start).Milliseconds()
	job.SetTranslated(restored)
	job.SetResult(result)
	job.SetStatus(StatusCompleted, "done")
	log.Info("translation complete",
		"chunks", len(chunks),
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens,
		"elapsed_ms", result.ElapsedMs)
}

func (w *Worker) fail(job *Job, log *slog.Logger, at JobStatus, err error) {
	log.Error("pipeline failed", "stage", string(at), "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, string(at))
}
