package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDueDateUnmarshal(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"abc"}`), &req))
		assert.False(t, req.DueDate.Set)
		assert.False(t, req.Patch().DueDateSet)
	})

	t.Run("explicit null clears", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null}`), &req))
		assert.True(t, req.DueDate.Set)
		assert.Nil(t, req.DueDate.Value)
		assert.Empty(t, req.Validate())
	})

	t.Run("empty string clears", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"dueDate":""}`), &req))
		assert.True(t, req.DueDate.Set)
		assert.Nil(t, req.DueDate.Value)
	})

	t.Run("rfc3339", func(t *testing.T) {
		var req CreateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"T1","dueDate":"2024-05-01T10:30:00.000Z"}`), &req))
		require.NotNil(t, req.DueDate.Value)
		assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), *req.DueDate.Value)
	})

	t.Run("date only", func(t *testing.T) {
		var req CreateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"T1","dueDate":"2024-05-01"}`), &req))
		require.NotNil(t, req.DueDate.Value)
		assert.Equal(t, "2024-05-01T00:00:00.000Z", FormatTime(*req.DueDate.Value))
	})

	t.Run("invalid", func(t *testing.T) {
		var req CreateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"T1","dueDate":"next tuesday"}`), &req))
		assert.Equal(t, []string{"Invalid due date"}, req.Validate())

		require.NoError(t, json.Unmarshal([]byte(`{"title":"T1","dueDate":42}`), &req))
		assert.Equal(t, []string{"Invalid due date"}, req.Validate())
	})
}

func TestTaskPatchApply(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{Title: "old", Status: TaskStatusTodo, DueDate: &due}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	done := TaskStatusDone
	TaskPatch{Status: &done}.Apply(task, now)
	assert.Equal(t, "old", task.Title)
	assert.Equal(t, TaskStatusDone, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, now, task.UpdatedAt)

	TaskPatch{DueDateSet: true}.Apply(task, now)
	assert.Nil(t, task.DueDate)
}

func TestNewTaskResponse(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	task := &Task{ID: "t1", ProjectID: "p1", Title: "T1", Status: TaskStatusTodo, CreatedAt: created, UpdatedAt: created}

	res := NewTaskResponse(task)
	assert.Nil(t, res.DueDate)
	assert.Equal(t, "2024-01-02T03:04:05.006Z", res.CreatedAt)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dueDate")

	task.DueDate = &created
	res = NewTaskResponse(task)
	require.NotNil(t, res.DueDate)
	assert.Equal(t, "2024-01-02T03:04:05.006Z", *res.DueDate)
}

func TestTaskStatusValid(t *testing.T) {
	assert.True(t, TaskStatusTodo.Valid())
	assert.True(t, TaskStatusInProgress.Valid())
	assert.True(t, TaskStatusDone.Valid())
	assert.False(t, TaskStatus("archived").Valid())
}
