package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/models"
	"taskboard/backend/testutil"
)

func TestCreateTask(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice@example.com")
	p := testutil.CreateTestProject(t, r, token, "Website")

	w := testutil.DoJSON(t, r, http.MethodPost, "/api/projects/"+p.ID+"/tasks", token, map[string]string{"title": "Design"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task models.TaskResponse
	env := testutil.DecodeEnvelope(t, w, &task)
	assert.Equal(t, "Task created successfully", env.Message)
	assert.Equal(t, p.ID, task.ProjectID)
	assert.Equal(t, "todo", task.Status)
	assert.Nil(t, task.DueDate)
	assert.NotContains(t, w.Body.String(), "dueDate")

	w = testutil.DoJSON(t, r, http.MethodPost, "/api/projects/"+p.ID+"/tasks", token, map[string]string{
		"title":   "Launch",
		"status":  "in_progress",
		"dueDate": "2030-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeEnvelope(t, w, &task)
	assert.Equal(t, "in_progress", task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2030-03-01T00:00:00.000Z", *task.DueDate)
}

func TestCreateTask_Validation(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice@example.com")
	p := testutil.CreateTestProject(t, r, token, "Website")

	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"short title", map[string]string{"title": "A"}, "Task title must be at least 2 characters"},
		{"long title", map[string]string{"title": strings.Repeat("a", 201)}, "Task title must be less than 200 characters"},
		{"missing title", map[string]string{}, "Task title is required"},
		{"bad status", map[string]string{"title": "Design", "status": "blocked"}, "Invalid status"},
		{"bad due date", map[string]string{"title": "Design", "dueDate": "next tuesday"}, "Invalid due date"},
		{"bad status and due date", map[string]string{"title": "Design", "status": "blocked", "dueDate": "nope"}, "Invalid status, Invalid due date"},
		{"malformed json", `{"title": 12`, "Invalid request payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoJSON(t, r, http.MethodPost, "/api/projects/"+p.ID+"/tasks", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, testutil.DecodeEnvelope(t, w, nil).Message)
		})
	}
}

func TestTask_ParentOwnership(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	alice, _ := testutil.RegisterAndGetToken(t, r, "alice@example.com")
	bob, _ := testutil.RegisterAndGetToken(t, r, "bob@example.com")
	p := testutil.CreateTestProject(t, r, alice, "Website")
	task := testutil.CreateTestTask(t, r, alice, p.ID, "Design")

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/projects/" + p.ID + "/tasks", nil},
		{http.MethodPost, "/api/projects/" + p.ID + "/tasks", map[string]string{"title": "Sneaky"}},
		{http.MethodGet, "/api/projects/" + p.ID + "/tasks/" + task.ID, nil},
		{http.MethodPut, "/api/projects/" + p.ID + "/tasks/" + task.ID, map[string]string{"status": "done"}},
		{http.MethodDelete, "/api/projects/" + p.ID + "/tasks/" + task.ID, nil},
	} {
		w := testutil.DoJSON(t, r, tc.method, tc.path, bob, tc.body)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Unauthorized access to project", testutil.DecodeEnvelope(t, w, nil).Message)
	}

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/projects/missing/tasks", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Project not found", testutil.DecodeEnvelope(t, w, nil).Message)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/projects/"+p.ID+"/tasks/missing", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", testutil.DecodeEnvelope(t, w, nil).Message)
}

func TestTask_WrongProjectPath(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice@example.com")
	p1 := testutil.CreateTestProject(t, r, token, "P1")
	p2 := testutil.CreateTestProject(t, r, token, "P2")
	task := testutil.CreateTestTask(t, r, token, p1.ID, "Design")

	w := testutil.DoJSON(t, r, http.MethodGet, "/api/projects/"+p2.ID+"/tasks/"+task.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Task does not belong to this project", testutil.DecodeEnvelope(t, w, nil).Message)

	w = testutil.DoJSON(t, r, http.MethodPut, "/api/projects/"+p2.ID+"/tasks/"+task.ID, token, map[string]string{"status": "done"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(t, r, http.MethodDelete, "/api/projects/"+p2.ID+"/tasks/"+task.ID, token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/projects/"+p1.ID+"/tasks/"+task.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.TaskResponse
	env := testutil.DecodeEnvelope(t, w, &got)
	assert.Equal(t, "Task retrieved successfully", env.Message)
	assert.Equal(t, "todo", got.Status)
}

func TestUpdateTask(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice@example.com")
	p := testutil.CreateTestProject(t, r, token, "Website")
	w := testutil.DoJSON(t, r, http.MethodPost, "/api/projects/"+p.ID+"/tasks", token, map[string]string{
		"title":   "Design",
		"dueDate": "2030-03-01T09:30:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var task models.TaskResponse
	testutil.DecodeEnvelope(t, w, &task)
	path := "/api/projects/" + p.ID + "/tasks/" + task.ID

	w = testutil.DoJSON(t, r, http.MethodPut, path, token, map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.TaskResponse
	env := testutil.DecodeEnvelope(t, w, &updated)
	assert.Equal(t, "Task updated successfully", env.Message)
	assert.Equal(t, "done", updated.Status)
	assert.Equal(t, "Design", updated.Title)
	require.NotNil(t, updated.DueDate)
	assert.Equal(t, "2030-03-01T09:30:00.000Z", *updated.DueDate)

	w = testutil.DoJSON(t, r, http.MethodPut, path, token, `{"dueDate": null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated = models.TaskResponse{}
	testutil.DecodeEnvelope(t, w, &updated)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, "done", updated.Status)

	w = testutil.DoJSON(t, r, http.MethodPut, path, token, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid status", testutil.DecodeEnvelope(t, w, nil).Message)
}

func TestDeleteTask(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	token, _ := testutil.RegisterAndGetToken(t, r, "alice@example.com")
	p := testutil.CreateTestProject(t, r, token, "Website")
	task := testutil.CreateTestTask(t, r, token, p.ID, "Design")
	path := "/api/projects/" + p.ID + "/tasks/" + task.ID

	w := testutil.DoJSON(t, r, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Task deleted successfully","data":null}`, w.Body.String())

	w = testutil.DoJSON(t, r, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoJSON(t, r, http.MethodGet, "/api/projects/"+p.ID+"/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.TaskResponse
	env := testutil.DecodeEnvelope(t, w, &list)
	assert.Equal(t, "Tasks retrieved successfully", env.Message)
	assert.Empty(t, list)
}
