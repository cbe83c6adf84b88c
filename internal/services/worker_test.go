package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"talentmatch/resume-engine/internal/cache"
	"talentmatch/resume-engine/internal/config"
	"talentmatch/resume-engine/internal/extraction"
	"talentmatch/resume-engine/internal/models"
)

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*models.ProcessingTask
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[uuid.UUID]*models.ProcessingTask{}}
}

func (r *fakeTaskRepo) Create(task *models.ProcessingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindByID(id uuid.UUID) (*models.ProcessingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found")
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) FindOpenByDocument(documentID uuid.UUID) (*models.ProcessingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		if task.DocumentID == documentID && task.Status.Open() {
			copied := *task
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTaskRepo) FindPendingTasks(limit int) ([]models.ProcessingTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ProcessingTask
	for _, task := range r.tasks {
		if task.Status == models.TaskPending && len(out) < limit {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) MarkProcessing(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.Status != models.TaskPending {
		return fmt.Errorf("task not claimable")
	}
	task.Status = models.TaskProcessing
	task.Attempts++
	return nil
}

func (r *fakeTaskRepo) MarkCompleted(id uuid.UUID, profileVersionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task := r.tasks[id]
	task.Status = models.TaskCompleted
	task.ProfileVersionID = &profileVersionID
	return nil
}

func (r *fakeTaskRepo) MarkFailed(id uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task := r.tasks[id]
	task.Status = models.TaskFailed
	task.ErrorMessage = &errorMsg
	return nil
}

type fakeDocRepo struct {
	docs map[uuid.UUID]*models.Document
}

func (r *fakeDocRepo) Create(d *models.Document) error { r.docs[d.ID] = d; return nil }

func (r *fakeDocRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found")
	}
	return doc, nil
}

func (r *fakeDocRepo) FindByContentHash(hash string) (*models.Document, error) {
	for _, doc := range r.docs {
		if doc.ContentHash == hash {
			return doc, nil
		}
	}
	return nil, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	versions []*models.ProfileVersion
}

func (r *fakeProfileRepo) CreateNextVersion(v *models.ProfileVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := 1
	for _, existing := range r.versions {
		if existing.DocumentID == v.DocumentID && existing.Version >= next {
			next = existing.Version + 1
		}
	}
	v.Version = next
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	copied := *v
	r.versions = append(r.versions, &copied)
	return nil
}

func (r *fakeProfileRepo) FindByID(id uuid.UUID) (*models.ProfileVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("profile version not found")
}

func (r *fakeProfileRepo) FindLatestByDocument(documentID uuid.UUID) (*models.ProfileVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.ProfileVersion
	for _, v := range r.versions {
		if v.DocumentID == documentID && (latest == nil || v.Version > latest.Version) {
			latest = v
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no profile version for document")
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeProfileRepo) FindByIDs(ids []uuid.UUID) ([]models.ProfileVersion, error) {
	var out []models.ProfileVersion
	for _, id := range ids {
		if v, err := r.FindByID(id); err == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) ListLatest(limit int) ([]models.ProfileVersion, error) {
	return nil, nil
}

type fakeStorage struct {
	files map[string][]byte
}

func (s *fakeStorage) SaveFile(file *multipart.FileHeader) (*SavedFile, error) {
	return nil, fmt.Errorf("unused")
}
func (s *fakeStorage) ReadFile(filename string) ([]byte, error) {
	raw, ok := s.files[filename]
	if !ok {
		return nil, fmt.Errorf("file not found")
	}
	return raw, nil
}
func (s *fakeStorage) GetFilePath(filename string) string { return filename }
func (s *fakeStorage) DeleteFile(filename string) error   { return nil }
func (s *fakeStorage) EnsureUploadDir() error             { return nil }

type countingAdapter struct {
	mu    sync.Mutex
	calls int
}

func (a *countingAdapter) Kind() extraction.AdapterKind { return extraction.AdapterSections }

func (a *countingAdapter) Extract(ctx context.Context, in extraction.Input) (*models.CandidateProfile, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	p := models.EmptyProfile()
	p.Identity.Name = models.Known("Dana Smith", 0.6)
	p.Experience = []models.ExperienceEntry{{Title: "Engineer", StartDate: "2020-01", Description: "Work."}}
	p.Skills = map[string][]string{"languages": {"go"}}
	p.OverallConfidence = 0.6
	return p, nil
}

// flakyAdapter fails its first n calls with a backend-unavailable error,
// then behaves like a working adapter.
type flakyAdapter struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (a *flakyAdapter) Kind() extraction.AdapterKind { return extraction.AdapterSections }

func (a *flakyAdapter) Extract(ctx context.Context, in extraction.Input) (*models.CandidateProfile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.failures > 0 {
		a.failures--
		return nil, extraction.ErrInferenceUnavailable
	}

	p := models.EmptyProfile()
	p.Identity.Name = models.Known("Dana Smith", 0.6)
	p.Experience = []models.ExperienceEntry{{Title: "Engineer", StartDate: "2020-01", Description: "Work."}}
	p.Skills = map[string][]string{"languages": {"go"}}
	p.OverallConfidence = 0.6
	return p, nil
}

func testWorkerConfig() config.WorkerConfig {
	return config.WorkerConfig{Concurrency: 1, TaskBudget: time.Minute, PollInterval: time.Second}
}

func newTestProcessor(t *testing.T) (*TaskProcessor, *fakeTaskRepo, *fakeDocRepo, *fakeProfileRepo, *countingAdapter) {
	t.Helper()
	adapter := &countingAdapter{}
	processor, taskRepo, docRepo, profileRepo := newProcessorWithAdapters(t, []extraction.Adapter{adapter})
	return processor, taskRepo, docRepo, profileRepo, adapter
}

func newProcessorWithAdapters(t *testing.T, adapters []extraction.Adapter) (*TaskProcessor, *fakeTaskRepo, *fakeDocRepo, *fakeProfileRepo) {
	t.Helper()

	orchestrator := extraction.NewOrchestrator(
		adapters,
		nil,
		config.ExtractionConfig{
			AdapterTimeout: time.Second,
			QualityWeights: config.QualityWeights{Identity: 15, Experience: 25, Education: 15, Skills: 20, Projects: 15, Personality: 10},
		},
		zap.NewNop(),
	)

	taskRepo := newFakeTaskRepo()
	docRepo := &fakeDocRepo{docs: map[uuid.UUID]*models.Document{}}
	profileRepo := &fakeProfileRepo{}
	storage := &fakeStorage{files: map[string][]byte{}}

	processor := NewTaskProcessor(
		taskRepo, docRepo, profileRepo,
		storage, orchestrator, cache.New("", zap.NewNop()),
		nil, nil,
		testWorkerConfig(), zap.NewNop(),
	)
	return processor, taskRepo, docRepo, profileRepo
}

func seedDocument(docRepo *fakeDocRepo, storage *fakeStorage, content string) *models.Document {
	doc := &models.Document{
		ID:       uuid.New(),
		Filename: "resume.txt",
		FileType: "text/plain",
	}
	docRepo.docs[doc.ID] = doc
	storage.files[doc.Filename] = []byte(content)
	return doc
}

func TestProcessCompletesTaskAndStoresVersion(t *testing.T) {
	processor, taskRepo, docRepo, profileRepo, _ := newTestProcessor(t)
	storage := processor.storage.(*fakeStorage)
	doc := seedDocument(docRepo, storage, "Dana Smith resume text")

	task := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskPending}
	require.NoError(t, taskRepo.Create(task))

	require.NoError(t, processor.Process(context.Background(), task.ID))

	stored, err := taskRepo.FindByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, stored.Status)
	require.NotNil(t, stored.ProfileVersionID)

	version, err := profileRepo.FindByID(*stored.ProfileVersionID)
	require.NoError(t, err)
	assert.Equal(t, 1, version.Version)
	assert.Equal(t, string(extraction.AdapterSections), version.ExtractedBy)
	assert.Greater(t, version.QualityScore, 0)
}

func TestReprocessAppendsVersionAndHitsCache(t *testing.T) {
	processor, taskRepo, docRepo, profileRepo, adapter := newTestProcessor(t)
	storage := processor.storage.(*fakeStorage)
	doc := seedDocument(docRepo, storage, "Dana Smith resume text")

	first := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskPending}
	require.NoError(t, taskRepo.Create(first))
	require.NoError(t, processor.Process(context.Background(), first.ID))

	second := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskPending}
	require.NoError(t, taskRepo.Create(second))
	require.NoError(t, processor.Process(context.Background(), second.ID))

	// Two versions exist; content was identical so extraction ran once.
	latest, err := profileRepo.FindLatestByDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, 1, adapter.calls)
}

func TestProcessSkipsAlreadyClaimedTask(t *testing.T) {
	processor, taskRepo, docRepo, _, adapter := newTestProcessor(t)
	storage := processor.storage.(*fakeStorage)
	doc := seedDocument(docRepo, storage, "Dana Smith resume text")

	task := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskProcessing}
	require.NoError(t, taskRepo.Create(task))

	require.NoError(t, processor.Process(context.Background(), task.ID))
	assert.Equal(t, 0, adapter.calls)
}

func TestProcessRetriesOnceWhenBackendRecovers(t *testing.T) {
	adapter := &flakyAdapter{failures: 1}
	processor, taskRepo, docRepo, _ := newProcessorWithAdapters(t, []extraction.Adapter{adapter})
	storage := processor.storage.(*fakeStorage)
	doc := seedDocument(docRepo, storage, "Dana Smith resume text")

	task := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskPending}
	require.NoError(t, taskRepo.Create(task))

	require.NoError(t, processor.Process(context.Background(), task.ID))

	stored, err := taskRepo.FindByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, stored.Status)
	assert.Equal(t, 2, adapter.calls)
}

func TestProcessFailsAfterSecondBackendFailure(t *testing.T) {
	adapter := &flakyAdapter{failures: 2}
	processor, taskRepo, docRepo, _ := newProcessorWithAdapters(t, []extraction.Adapter{adapter})
	storage := processor.storage.(*fakeStorage)
	doc := seedDocument(docRepo, storage, "Dana Smith resume text")

	task := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskPending}
	require.NoError(t, taskRepo.Create(task))

	err := processor.Process(context.Background(), task.ID)
	require.Error(t, err)

	stored, findErr := taskRepo.FindByID(task.ID)
	require.NoError(t, findErr)
	assert.Equal(t, models.TaskFailed, stored.Status)
	// Exactly one retry: two attempts total, never a third.
	assert.Equal(t, 2, adapter.calls)
}

func TestProcessMarksFailureOnMissingFile(t *testing.T) {
	processor, taskRepo, docRepo, _, _ := newTestProcessor(t)
	doc := &models.Document{ID: uuid.New(), Filename: "missing.txt", FileType: "text/plain"}
	docRepo.docs[doc.ID] = doc

	task := &models.ProcessingTask{DocumentID: doc.ID, Status: models.TaskPending}
	require.NoError(t, taskRepo.Create(task))

	err := processor.Process(context.Background(), task.ID)
	require.Error(t, err)

	stored, findErr := taskRepo.FindByID(task.ID)
	require.NoError(t, findErr)
	assert.Equal(t, models.TaskFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
}
