package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/doctrans/internal/placeholder"
)

// JobStatus represents the state of a translation job.
type JobStatus string

const (
	StatusQueued       JobStatus = "queued"
	StatusAnalyzing    JobStatus = "analyzing"
	StatusCollecting   JobStatus = "collecting_images"
	StatusResolving    JobStatus = "resolving_figures"
	StatusSubstituting JobStatus = "substituting"
	StatusChunking     JobStatus = "chunking"
	StatusTranslating  JobStatus = "translating"
	StatusRestoring    JobStatus = "restoring"
	StatusStoring      JobStatus = "storing"
	StatusCompleted    JobStatus = "completed"
	StatusFailed       JobStatus = "failed"
)

// Job tracks the state of a single document translation.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename"`
	TargetLang string    `json:"target_lang"`
	ChunkChars int       `json:"chunk_chars"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Result *Result `json:"result,omitempty"`

	// Internal: not serialized.
	fileData   []byte
	translated string
	errors     []string
}

// Result holds the outcome of a completed translation.
type Result struct {
	ArtifactKey string `json:"artifact_key,omitempty"`
	ArtifactURL string `json:"artifact_url,omitempty"`

	SourceChars     int `json:"source_chars"`
	TranslatedChars int `json:"translated_chars"`
	Chunks          int `json:"chunks"`

	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`

	Figures      int `json:"figures"`
	Images       int `json:"images"`
	Placeholders int `json:"placeholders"`

	UnpairedFigures int `json:"unpaired_figures"`
	AppendedImages  int `json:"appended_images"`

	Restore placeholder.RestoreStats `json:"restore"`

	ElapsedMs int64 `json:"elapsed_ms"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// SetContentHash records the source digest. Workers write it while
// status handlers may be snapshotting concurrently.
func (j *Job) SetContentHash(hash string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = hash
}

// SetResult records the final translation outcome.
func (j *Job) SetResult(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Result = res
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// SetTranslated stores the final translated markdown and releases the
// source bytes, which are no longer needed once translation is done.
func (j *Job) SetTranslated(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.translated = text
	j.fileData = nil
}

// Translated returns the final translated markdown, empty until the job
// completes.
func (j *Job) Translated() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.translated
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	DocID       string    `json:"doc_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	TargetLang  string    `json:"target_lang"`
	ChunkChars  int       `json:"chunk_chars"`
	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Errors      []string  `json:"errors"`
	Result      *Result   `json:"result,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.errors
	if errs == nil {
		errs = []string{}
	}
	var res *Result
	if j.Result != nil {
		cp := *j.Result
		res = &cp
	}
	return JobSnapshot{
		ID:          j.ID,
		DocID:       j.DocID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		TargetLang:  j.TargetLang,
		ChunkChars:  j.ChunkChars,
		ContentHash: j.ContentHash,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Errors:      errs,
		Result:      res,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
