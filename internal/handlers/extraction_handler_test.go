package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentmatch/resume-engine/internal/models"
)

type stubTaskRepo struct {
	tasks   map[uuid.UUID]*models.ProcessingTask
	created int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: map[uuid.UUID]*models.ProcessingTask{}}
}

func (r *stubTaskRepo) Create(task *models.ProcessingTask) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	r.tasks[task.ID] = task
	r.created++
	return nil
}

func (r *stubTaskRepo) FindByID(id uuid.UUID) (*models.ProcessingTask, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found")
	}
	return task, nil
}

func (r *stubTaskRepo) FindOpenByDocument(documentID uuid.UUID) (*models.ProcessingTask, error) {
	for _, task := range r.tasks {
		if task.DocumentID == documentID && task.Status.Open() {
			return task, nil
		}
	}
	return nil, nil
}

func (r *stubTaskRepo) FindPendingTasks(limit int) ([]models.ProcessingTask, error) {
	return nil, nil
}

func (r *stubTaskRepo) MarkProcessing(id uuid.UUID) error                  { return nil }
func (r *stubTaskRepo) MarkCompleted(id, profileVersionID uuid.UUID) error { return nil }
func (r *stubTaskRepo) MarkFailed(id uuid.UUID, errorMsg string) error     { return nil }

type stubDocRepo struct {
	docs map[uuid.UUID]*models.Document
}

func (r *stubDocRepo) Create(d *models.Document) error { r.docs[d.ID] = d; return nil }

func (r *stubDocRepo) FindByID(id uuid.UUID) (*models.Document, error) {
	doc, ok := r.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found")
	}
	return doc, nil
}

func (r *stubDocRepo) FindByContentHash(hash string) (*models.Document, error) {
	return nil, nil
}

type stubProfileRepo struct{}

func (r *stubProfileRepo) CreateNextVersion(v *models.ProfileVersion) error { return nil }
func (r *stubProfileRepo) FindByID(id uuid.UUID) (*models.ProfileVersion, error) {
	return nil, fmt.Errorf("profile version not found")
}
func (r *stubProfileRepo) FindLatestByDocument(documentID uuid.UUID) (*models.ProfileVersion, error) {
	return nil, fmt.Errorf("no profile version for document")
}
func (r *stubProfileRepo) FindByIDs(ids []uuid.UUID) ([]models.ProfileVersion, error) {
	return nil, nil
}
func (r *stubProfileRepo) ListLatest(limit int) ([]models.ProfileVersion, error) {
	return nil, nil
}

type recordingWorker struct {
	enqueued []uuid.UUID
}

func (w *recordingWorker) Start(ctx context.Context) {}
func (w *recordingWorker) Stop()                     {}
func (w *recordingWorker) EnqueueTask(taskID uuid.UUID) {
	w.enqueued = append(w.enqueued, taskID)
}

func newExtractionTestApp(taskRepo *stubTaskRepo, docRepo *stubDocRepo, worker *recordingWorker) *fiber.App {
	handler := NewExtractionHandler(taskRepo, docRepo, &stubProfileRepo{}, worker)

	app := fiber.New()
	app.Post("/extractions", handler.HandleSubmit)
	app.Post("/documents/:id/reprocess", handler.HandleReprocess)
	return app
}

func seedOpenTask(taskRepo *stubTaskRepo, documentID uuid.UUID) *models.ProcessingTask {
	task := &models.ProcessingTask{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     models.TaskProcessing,
	}
	taskRepo.tasks[task.ID] = task
	return task
}

func TestSubmitReturnsOpenTaskInsteadOfQueueingAnother(t *testing.T) {
	taskRepo := newStubTaskRepo()
	docRepo := &stubDocRepo{docs: map[uuid.UUID]*models.Document{}}
	worker := &recordingWorker{}
	app := newExtractionTestApp(taskRepo, docRepo, worker)

	doc := &models.Document{ID: uuid.New(), Filename: "resume.pdf", FileType: "application/pdf"}
	docRepo.docs[doc.ID] = doc
	open := seedOpenTask(taskRepo, doc.ID)

	body := fmt.Sprintf(`{"document_id":%q}`, doc.ID.String())
	req := httptest.NewRequest("POST", "/extractions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var got models.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, open.ID.String(), got.ID)
	assert.Equal(t, string(models.TaskProcessing), got.Status)

	// No second task, nothing enqueued.
	assert.Equal(t, 0, taskRepo.created)
	assert.Empty(t, worker.enqueued)
}

func TestReprocessConflictsWhileTaskOpen(t *testing.T) {
	taskRepo := newStubTaskRepo()
	docRepo := &stubDocRepo{docs: map[uuid.UUID]*models.Document{}}
	worker := &recordingWorker{}
	app := newExtractionTestApp(taskRepo, docRepo, worker)

	doc := &models.Document{ID: uuid.New(), Filename: "resume.pdf", FileType: "application/pdf"}
	docRepo.docs[doc.ID] = doc
	open := seedOpenTask(taskRepo, doc.ID)

	req := httptest.NewRequest("POST", "/documents/"+doc.ID.String()+"/reprocess", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, open.ID.String(), got["task_id"])

	assert.Equal(t, 0, taskRepo.created)
	assert.Empty(t, worker.enqueued)
}

func TestReprocessQueuesNewTaskWhenNoneOpen(t *testing.T) {
	taskRepo := newStubTaskRepo()
	docRepo := &stubDocRepo{docs: map[uuid.UUID]*models.Document{}}
	worker := &recordingWorker{}
	app := newExtractionTestApp(taskRepo, docRepo, worker)

	doc := &models.Document{ID: uuid.New(), Filename: "resume.pdf", FileType: "application/pdf"}
	docRepo.docs[doc.ID] = doc

	req := httptest.NewRequest("POST", "/documents/"+doc.ID.String()+"/reprocess", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var got models.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, string(models.TaskPending), got.Status)

	assert.Equal(t, 1, taskRepo.created)
	require.Len(t, worker.enqueued, 1)
	assert.Equal(t, got.ID, worker.enqueued[0].String())
}
