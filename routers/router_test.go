package routers

import (
	"bytes"
	"context"
	"coursetrack/config"
	"coursetrack/database/dbtest"
	"coursetrack/middleware"
	"coursetrack/models"
	"coursetrack/services/auth"
	"coursetrack/services/catalog"
	"coursetrack/services/certificates"
	"coursetrack/services/progress"
	"coursetrack/services/submissions"
	"coursetrack/storage"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	app        *fiber.App
	adminToken string
	userToken  string
	userID     uint
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "test-secret", JWTTTLHours: 1, AdminEmails: []string{"admin@example.com"}}

	db := dbtest.New(t)
	blobs := storage.NewMemoryStore()
	authSvc := auth.New(db, bcrypt.MinCost, config.AppConfig.IsAdminEmail, middleware.GenerateJWT)
	app := NewApp(Deps{
		DB:           db,
		Blobs:        blobs,
		Auth:         authSvc,
		Catalog:      catalog.New(db, blobs),
		Progress:     progress.New(db, nil),
		Submissions:  submissions.New(db),
		Certificates: certificates.New(db, blobs, nil),
		Quiet:        true,
	})

	env := &testEnv{app: app}
	ctx := context.Background()
	admin, err := authSvc.Signup(ctx, "Admin", "admin@example.com", "admin-pass")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
	env.adminToken, err = middleware.GenerateJWT(admin)
	require.NoError(t, err)

	user, err := authSvc.Signup(ctx, "Learner", "learner@example.com", "learner-pass")
	require.NoError(t, err)
	env.userID = user.ID
	env.userToken, err = middleware.GenerateJWT(user)
	require.NoError(t, err)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, token)
}

func (e *testEnv) send(t *testing.T, req *http.Request, token string) (int, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func (e *testEnv) createBatch(t *testing.T, days int) models.Batch {
	t.Helper()
	status, res := e.do(t, http.MethodPost, "/batches", e.adminToken, fiber.Map{
		"title": "Go Cohort", "course_name": "Go", "duration_days": days,
	})
	require.Equal(t, http.StatusCreated, status, res.Message)
	return decode[models.Batch](t, res.Data)
}

func (e *testEnv) createTask(t *testing.T, batchID uint, day int) (int, envelope) {
	t.Helper()
	return e.do(t, http.MethodPost, "/tasks", e.adminToken, fiber.Map{
		"batch_id": batchID, "day_number": day, "title": fmt.Sprintf("Day %d", day),
		"content_type": "quiz", "is_published": true,
	})
}

func TestTaskDayRules(t *testing.T) {
	env := newTestEnv(t)
	batch := env.createBatch(t, 10)

	status, _ := env.createTask(t, batch.ID, 5)
	assert.Equal(t, http.StatusCreated, status)

	status, res := env.createTask(t, batch.ID, 5)
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, res.Status)

	status, _ = env.createTask(t, batch.ID, 11)
	assert.Equal(t, http.StatusBadRequest, status)

	status, res = env.do(t, http.MethodPost, "/tasks", env.adminToken, fiber.Map{
		"batch_id": batch.ID, "day_number": 2, "title": "Watch", "content_type": "video",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(res.Data), "video_url")

	status, res = env.do(t, http.MethodGet, fmt.Sprintf("/batches/%d/available-days", batch.ID), env.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	days := decode[[]int](t, res.Data)
	assert.Len(t, days, 9)
	assert.NotContains(t, days, 5)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/batches", "", fiber.Map{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/batches", env.userToken, fiber.Map{
		"title": "Go Cohort", "course_name": "Go", "duration_days": 3,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, res := env.do(t, http.MethodPost, "/batches", env.adminToken, fiber.Map{"title": "Go"})
	assert.Equal(t, http.StatusBadRequest, status)
	fields := decode[map[string]string](t, res.Data)
	assert.Contains(t, fields, "course_name")
	assert.Contains(t, fields, "duration_days")

	status, _ = env.do(t, http.MethodGet, "/admin/dashboard/stats", env.adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, "/admin/dashboard/stats", env.userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestEnrollAndCompleteFlow(t *testing.T) {
	env := newTestEnv(t)
	batch := env.createBatch(t, 10)
	var taskIDs []uint
	for day := 1; day <= 4; day++ {
		status, res := env.createTask(t, batch.ID, day)
		require.Equal(t, http.StatusCreated, status)
		taskIDs = append(taskIDs, decode[models.Task](t, res.Data).ID)
	}

	status, res := env.do(t, http.MethodPost, "/enrollments", env.userToken, fiber.Map{"batchId": batch.ID})
	require.Equal(t, http.StatusCreated, status, res.Message)
	enrollment := decode[models.Enrollment](t, res.Data)
	assert.Equal(t, 0, enrollment.Progress)

	status, res = env.do(t, http.MethodPost, "/enrollments", env.userToken, fiber.Map{"batchId": batch.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, enrollment.ID, decode[models.Enrollment](t, res.Data).ID)

	complete := func(taskID uint) progress.CompletionResult {
		status, res := env.do(t, http.MethodPost, fmt.Sprintf("/tasks/%d/complete", taskID), env.userToken, fiber.Map{"enrollmentId": enrollment.ID})
		require.Equal(t, http.StatusOK, status, res.Message)
		return decode[progress.CompletionResult](t, res.Data)
	}
	complete(taskIDs[0])
	result := complete(taskIDs[1])
	assert.Equal(t, 50, result.Enrollment.Progress)
	assert.Equal(t, models.EnrollmentActive, result.Enrollment.Status)
	complete(taskIDs[2])
	result = complete(taskIDs[3])
	assert.Equal(t, 100, result.Enrollment.Progress)
	assert.Equal(t, models.EnrollmentCompleted, result.Enrollment.Status)

	status, res = env.do(t, http.MethodGet, fmt.Sprintf("/enrollments/progress?batchId=%d", batch.ID), env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	snap := decode[progress.Snapshot](t, res.Data)
	require.NotNil(t, snap.LastCompletedTask)
	assert.Equal(t, taskIDs[3], snap.LastCompletedTask.ID)

	status, res = env.do(t, http.MethodGet, fmt.Sprintf("/enrollments/check?batchId=%d", batch.ID), env.userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(res.Data), `"enrolled":true`)

	// learners cannot read other learners' progress
	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/enrollments/progress?batchId=%d&userId=%d", batch.ID, env.userID+100), env.userToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/enrollments/progress?batchId=%d", batch.ID), env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmissionUpdateIsEitherResubmitOrReview(t *testing.T) {
	env := newTestEnv(t)
	batch := env.createBatch(t, 3)
	_, res := env.createTask(t, batch.ID, 1)
	task := decode[models.Task](t, res.Data)
	status, _ := env.do(t, http.MethodPost, "/enrollments", env.userToken, fiber.Map{"batchId": batch.ID})
	require.Equal(t, http.StatusCreated, status)

	status, res = env.do(t, http.MethodPost, "/submissions", env.userToken, fiber.Map{"task_id": task.ID, "content": "answer"})
	require.Equal(t, http.StatusCreated, status, res.Message)
	sub := decode[models.TaskSubmission](t, res.Data)
	path := fmt.Sprintf("/submissions/%d", sub.ID)

	status, _ = env.do(t, http.MethodPut, path, env.adminToken, fiber.Map{"content": "x", "status": "approved"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPut, path, env.userToken, fiber.Map{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, status)

	status, res = env.do(t, http.MethodPut, path, env.adminToken, fiber.Map{"status": "approved", "grade": 88})
	require.Equal(t, http.StatusOK, status, res.Message)
	assert.Equal(t, models.SubmissionApproved, decode[models.TaskSubmission](t, res.Data).Status)

	status, res = env.do(t, http.MethodPut, path, env.userToken, fiber.Map{"content": "better answer"})
	require.Equal(t, http.StatusOK, status, res.Message)
	updated := decode[models.TaskSubmission](t, res.Data)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, models.SubmissionPending, updated.Status)

	status, res = env.do(t, http.MethodPut, path, env.userToken, fiber.Map{"links": []string{"https://git.example/answer"}})
	require.Equal(t, http.StatusOK, status, res.Message)
	updated = decode[models.TaskSubmission](t, res.Data)
	assert.Equal(t, 3, updated.Version)
	assert.Equal(t, "better answer", updated.Content)
	assert.Equal(t, []string{"https://git.example/answer"}, []string(updated.Links))
}

func TestIssueAndVerifyCertificates(t *testing.T) {
	env := newTestEnv(t)
	batch := env.createBatch(t, 3)

	status, res := env.do(t, http.MethodPost, "/certificates", env.adminToken, fiber.Map{"title": "Go Developer", "batch_id": batch.ID})
	require.Equal(t, http.StatusCreated, status, res.Message)
	cert := decode[models.Certificate](t, res.Data)

	status, res = env.do(t, http.MethodPost, "/certificates/issue", env.adminToken, fiber.Map{
		"certificate_id": cert.ID,
		"recipients": []fiber.Map{
			{"name": "Ada", "email": "a@x.com", "certificate_url": "mem://c/1.pdf"},
			{"name": "Ada", "email": "a@x.com", "certificate_url": "mem://c/2.pdf"},
		},
	})
	require.Equal(t, http.StatusOK, status, res.Message)
	result := decode[certificates.IssueResult](t, res.Data)
	require.Len(t, result.Issued, 1)
	require.Len(t, result.Errors, 1)

	status, res = env.do(t, http.MethodGet, "/verify-certificate?id="+result.Issued[0].CertificateID, "", nil)
	require.Equal(t, http.StatusOK, status)
	v := decode[certificates.Verification](t, res.Data)
	assert.True(t, v.Valid)
	assert.Equal(t, "Ada", v.RecipientName)

	status, _ = env.do(t, http.MethodGet, "/verify-certificate?id=CERT-0000000000000000", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodGet, "/verify-certificate", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/certificates/issue", env.adminToken, fiber.Map{"certificate_id": cert.ID, "recipients": []fiber.Map{}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "banner.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, res := env.send(t, req, env.userToken)
	require.Equal(t, http.StatusCreated, status, res.Message)
	blob := decode[storage.Blob](t, res.Data)
	assert.NotEmpty(t, blob.ID)
	assert.Contains(t, blob.URL, "banner.png")

	status, _ = env.do(t, http.MethodPost, "/upload", env.userToken, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminUserManagement(t *testing.T) {
	env := newTestEnv(t)

	status, res := env.do(t, http.MethodGet, "/admin/users?page=1&limit=10&search=learn", env.adminToken, nil)
	require.Equal(t, http.StatusOK, status, res.Message)
	assert.Contains(t, string(res.Data), "learner@example.com")
	assert.NotContains(t, string(res.Data), "admin@example.com")

	status, _ = env.do(t, http.MethodGet, "/admin/users", env.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	path := fmt.Sprintf("/admin/users/%d/admin", env.userID)
	status, _ = env.do(t, http.MethodPut, path, env.userToken, fiber.Map{"is_admin": true})
	assert.Equal(t, http.StatusForbidden, status)

	status, res = env.do(t, http.MethodPut, path, env.adminToken, fiber.Map{"is_admin": true})
	require.Equal(t, http.StatusOK, status, res.Message)
	assert.True(t, decode[models.User](t, res.Data).IsAdmin)

	// the promoted learner now passes admin checks with the same token
	status, _ = env.do(t, http.MethodGet, "/admin/dashboard/stats", env.userToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPut, path, env.userToken, fiber.Map{"is_admin": false})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginRecordsHistory(t *testing.T) {
	env := newTestEnv(t)

	status, res := env.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"email": "learner@example.com", "password": "learner-pass"})
	require.Equal(t, http.StatusOK, status, res.Message)
	login := decode[struct {
		Token string `json:"token"`
	}](t, res.Data)
	require.NotEmpty(t, login.Token)

	status, _ = env.do(t, http.MethodPost, "/auth/login", "", fiber.Map{"email": "learner@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, res = env.do(t, http.MethodGet, "/auth/login/history", login.Token, nil)
	require.Equal(t, http.StatusOK, status, res.Message)
	assert.Contains(t, string(res.Data), `"total":1`)

	status, res = env.do(t, http.MethodGet, "/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, env.userID, decode[models.User](t, res.Data).ID)
}
