package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/cache"
	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/extraction"
	"talentmatch/resume-engine/internal/models"
	"talentmatch/resume-engine/internal/repositories"
)

// ErrTaskBudgetExceeded marks a task that ran out of its processing budget.
var ErrTaskBudgetExceeded = errors.New("task processing budget exceeded")

// Worker drains the processing task queue: a channel fed by the HTTP layer
// plus a database poller that picks up tasks enqueued before a restart.
type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueTask(taskID uuid.UUID)
}

type worker struct {
	taskRepo    repositories.TaskRepository
	processor   *TaskProcessor
	taskQueue   chan uuid.UUID
	concurrency int
	poll        time.Duration
	logger      *zap.Logger
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewWorker(taskRepo repositories.TaskRepository, processor *TaskProcessor, cfg config.WorkerConfig, logger *zap.Logger) Worker {
	return &worker{
		taskRepo:    taskRepo,
		processor:   processor,
		taskQueue:   make(chan uuid.UUID, 100),
		concurrency: cfg.Concurrency,
		poll:        cfg.PollInterval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting extraction workers", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processTasks(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingTasks(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("extraction workers stopped")
}

func (w *worker) EnqueueTask(taskID uuid.UUID) {
	select {
	case w.taskQueue <- taskID:
	case <-w.stopChan:
		w.logger.Warn("worker stopped, task left for poller", zap.String("task_id", taskID.String()))
	}
}

func (w *worker) processTasks(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case taskID := <-w.taskQueue:
			log := w.logger.With(zap.Int("worker", workerID), zap.String("task_id", taskID.String()))
			if err := w.processor.Process(ctx, taskID); err != nil {
				log.Error("task processing failed", zap.Error(err))
			} else {
				log.Info("task processed")
			}
		}
	}
}

// pollPendingTasks re-enqueues pending rows. The pending -> processing claim
// in the repository is atomic, so a task both enqueued and polled runs once.
func (w *worker) pollPendingTasks(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.taskRepo.FindPendingTasks(10)
			if err != nil {
				w.logger.Warn("failed to poll pending tasks", zap.Error(err))
				continue
			}
			for _, task := range pending {
				w.EnqueueTask(task.ID)
			}
		}
	}
}

// TaskProcessor executes one extraction task end to end: claim, extract,
// persist the new profile version, index it, and close the task. Identical
// document content reuses the cached extraction instead of re-running the
// adapter chain.
type TaskProcessor struct {
	taskRepo     repositories.TaskRepository
	documentRepo repositories.DocumentRepository
	profileRepo  repositories.ProfileRepository
	storage      StorageService
	orchestrator *extraction.Orchestrator
	resultCache  *cache.ResultCache
	embedder     interface {
		EmbedText(ctx context.Context, text string) ([]float32, error)
	}
	vectorIndex VectorIndexService
	taskBudget  time.Duration
	logger      *zap.Logger
}

func NewTaskProcessor(
	taskRepo repositories.TaskRepository,
	documentRepo repositories.DocumentRepository,
	profileRepo repositories.ProfileRepository,
	storage StorageService,
	orchestrator *extraction.Orchestrator,
	resultCache *cache.ResultCache,
	gemini GeminiService,
	vectorIndex VectorIndexService,
	cfg config.WorkerConfig,
	logger *zap.Logger,
) *TaskProcessor {
	return &TaskProcessor{
		taskRepo:     taskRepo,
		documentRepo: documentRepo,
		profileRepo:  profileRepo,
		storage:      storage,
		orchestrator: orchestrator,
		resultCache:  resultCache,
		embedder:     gemini,
		vectorIndex:  vectorIndex,
		taskBudget:   cfg.TaskBudget,
		logger:       logger,
	}
}

// Process runs one task. Errors after the claim mark the task failed rather
// than propagate: a failed task is a terminal state, not a crash.
func (p *TaskProcessor) Process(ctx context.Context, taskID uuid.UUID) error {
	if err := p.taskRepo.MarkProcessing(taskID); err != nil {
		// Claimed by another worker or already finished.
		return nil
	}

	task, err := p.taskRepo.FindByID(taskID)
	if err != nil {
		return fmt.Errorf("failed to load claimed task: %w", err)
	}

	ctx, cancel := context.WithTimeoutCause(ctx, p.taskBudget, ErrTaskBudgetExceeded)
	defer cancel()

	versionID, err := p.run(ctx, task)
	if err != nil && ctx.Err() == nil && infrastructureErr(err) {
		// One more attempt within the same budget; the backend may have
		// recovered. Document-level failures are not retried.
		p.logger.Warn("retrying task after infrastructure failure",
			zap.String("task_id", task.ID.String()), zap.Error(err))
		versionID, err = p.run(ctx, task)
	}
	if err != nil {
		if ctx.Err() != nil && errors.Is(context.Cause(ctx), ErrTaskBudgetExceeded) {
			err = fmt.Errorf("%w after %s", ErrTaskBudgetExceeded, p.taskBudget)
		}
		if markErr := p.taskRepo.MarkFailed(task.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to record task failure", zap.String("task_id", task.ID.String()), zap.Error(markErr))
		}
		return err
	}

	if err := p.taskRepo.MarkCompleted(task.ID, versionID); err != nil {
		return fmt.Errorf("failed to mark task completed: %w", err)
	}
	return nil
}

// infrastructureErr reports whether the failure came from the inference
// backend rather than the document itself, so a second attempt can succeed.
func infrastructureErr(err error) bool {
	return errors.Is(err, extraction.ErrInferenceUnavailable) ||
		errors.Is(err, extraction.ErrInferenceTimeout)
}

func (p *TaskProcessor) run(ctx context.Context, task *models.ProcessingTask) (uuid.UUID, error) {
	document, err := p.documentRepo.FindByID(task.DocumentID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load document: %w", err)
	}

	raw, err := p.storage.ReadFile(document.Filename)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read document file: %w", err)
	}

	result, err := p.extract(ctx, raw, document.FileType)
	if err != nil {
		return uuid.Nil, err
	}

	version := &models.ProfileVersion{
		DocumentID:        document.ID,
		QualityScore:      result.QualityScore,
		OverallConfidence: result.Profile.OverallConfidence,
		ExtractedBy:       string(result.ExtractedBy),
	}
	if err := version.SetProfile(result.Profile); err != nil {
		return uuid.Nil, err
	}
	if err := p.profileRepo.CreateNextVersion(version); err != nil {
		return uuid.Nil, err
	}

	p.indexProfile(ctx, version, result.Profile)
	return version.ID, nil
}

// extract runs the adapter chain behind the extraction cache, keyed by
// document content. Reprocessing unchanged bytes is a cache hit.
func (p *TaskProcessor) extract(ctx context.Context, raw []byte, mimeType string) (*extraction.Result, error) {
	key := cache.Key(cache.NamespaceExtraction, raw)
	data, err := p.resultCache.GetOrCompute(ctx, key, 7*24*time.Hour, func(ctx context.Context) ([]byte, error) {
		result, err := p.orchestrator.Extract(ctx, raw, mimeType)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}

	var result extraction.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached extraction: %w", err)
	}
	return &result, nil
}

// indexProfile is best effort: an unreachable vector index costs bulk-match
// discovery for this version, never the task.
func (p *TaskProcessor) indexProfile(ctx context.Context, version *models.ProfileVersion, profile *models.CandidateProfile) {
	if p.vectorIndex == nil {
		return
	}
	narrative := profile.Narrative()
	if narrative == "" {
		return
	}

	embedding, err := p.embedder.EmbedText(ctx, narrative)
	if err != nil {
		p.logger.Warn("failed to embed profile narrative for indexing",
			zap.String("profile_version_id", version.ID.String()), zap.Error(err))
		return
	}
	if err := p.vectorIndex.UpsertProfile(ctx, version.ID, version.DocumentID, narrative, embedding); err != nil {
		p.logger.Warn("failed to index profile version",
			zap.String("profile_version_id", version.ID.String()), zap.Error(err))
	}
}
