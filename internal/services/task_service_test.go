package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/apperr"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories/memrepo"
)

type taskFixture struct {
	projects *ProjectService
	tasks    *TaskService
	p1, p2   *models.Project
}

func newTaskFixture(t *testing.T) taskFixture {
	t.Helper()
	store := memrepo.New()
	projects := NewProjectService(store.Projects())
	f := taskFixture{projects: projects, tasks: NewTaskService(projects, store.Tasks())}

	var err error
	f.p1, err = projects.CreateProject(context.Background(), "alice", models.CreateProjectRequest{Name: "P1", Description: "d"})
	require.NoError(t, err)
	f.p2, err = projects.CreateProject(context.Background(), "alice", models.CreateProjectRequest{Name: "P2", Description: "d"})
	require.NoError(t, err)
	return f
}

func TestTaskService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)

	task, err := f.tasks.CreateTask(ctx, f.p1.ID, "alice", models.CreateTaskRequest{Title: "T1"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, task.Status)
	assert.Nil(t, task.DueDate)
	assert.Equal(t, f.p1.ID, task.ProjectID)

	due := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	task, err = f.tasks.CreateTask(ctx, f.p1.ID, "alice", models.CreateTaskRequest{
		Title:   "T2",
		Status:  models.TaskStatusInProgress,
		DueDate: models.DueDate{Set: true, Value: &due},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	got, err := f.tasks.GetTask(ctx, f.p1.ID, task.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2030-03-01T12:00:00.000Z", models.FormatTime(*got.DueDate))
}

func TestTaskService_ParentOwnershipFirst(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)
	task, err := f.tasks.CreateTask(ctx, f.p1.ID, "alice", models.CreateTaskRequest{Title: "T1"})
	require.NoError(t, err)

	_, err = f.tasks.ListTasks(ctx, f.p1.ID, "bob")
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")
	_, err = f.tasks.CreateTask(ctx, f.p1.ID, "bob", models.CreateTaskRequest{Title: "T1"})
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")
	_, err = f.tasks.GetTask(ctx, f.p1.ID, task.ID, "bob")
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")
	// 親プロジェクトのチェックはタスクの存在チェックより先
	_, err = f.tasks.GetTask(ctx, f.p1.ID, "missing", "bob")
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")

	_, err = f.tasks.ListTasks(ctx, "missing", "alice")
	requireKind(t, err, apperr.KindNotFound, "Project not found")
	_, err = f.tasks.GetTask(ctx, f.p1.ID, "missing", "alice")
	requireKind(t, err, apperr.KindNotFound, "Task not found")
}

func TestTaskService_WrongProjectPath(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)
	task, err := f.tasks.CreateTask(ctx, f.p1.ID, "alice", models.CreateTaskRequest{Title: "T1"})
	require.NoError(t, err)

	_, err = f.tasks.GetTask(ctx, f.p2.ID, task.ID, "alice")
	requireKind(t, err, apperr.KindForbidden, "Task does not belong to this project")

	done := models.TaskStatusDone
	_, err = f.tasks.UpdateTask(ctx, f.p2.ID, task.ID, "alice", models.TaskPatch{Status: &done})
	requireKind(t, err, apperr.KindForbidden, "Task does not belong to this project")

	err = f.tasks.DeleteTask(ctx, f.p2.ID, task.ID, "alice")
	requireKind(t, err, apperr.KindForbidden, "Task does not belong to this project")

	got, err := f.tasks.GetTask(ctx, f.p1.ID, task.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusTodo, got.Status)
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newTaskFixture(t)
	due := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	task, err := f.tasks.CreateTask(ctx, f.p1.ID, "alice", models.CreateTaskRequest{
		Title:   "T1",
		DueDate: models.DueDate{Set: true, Value: &due},
	})
	require.NoError(t, err)

	// 状態遷移に制約はない
	for _, st := range []models.TaskStatus{models.TaskStatusDone, models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone} {
		st := st
		updated, err := f.tasks.UpdateTask(ctx, f.p1.ID, task.ID, "alice", models.TaskPatch{Status: &st})
		require.NoError(t, err)
		assert.Equal(t, st, updated.Status)
		require.NotNil(t, updated.DueDate, "dueDate untouched when absent from the patch")
	}

	cleared, err := f.tasks.UpdateTask(ctx, f.p1.ID, task.ID, "alice", models.TaskPatch{DueDateSet: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
	assert.Equal(t, "T1", cleared.Title)

	require.NoError(t, f.tasks.DeleteTask(ctx, f.p1.ID, task.ID, "alice"))
	_, err = f.tasks.GetTask(ctx, f.p1.ID, task.ID, "alice")
	requireKind(t, err, apperr.KindNotFound, "Task not found")

	list, err := f.tasks.ListTasks(ctx, f.p1.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}
