// Package repotest はすべてのストア実装が満たすべき振る舞いを検証する共通テストです。
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

// Run は newStore が返す空のストアに対して共通テストを実行します。
func Run(t *testing.T, newStore func(t *testing.T) repositories.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Projects", func(t *testing.T) { testProjects(t, newStore(t)) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("DeleteWithTasks", func(t *testing.T) { testCascade(t, newStore(t)) })
}

func newUser(t *testing.T, s repositories.Store) *models.User {
	t.Helper()
	now := models.Now()
	u := &models.User{
		ID:             uuid.NewString(),
		Email:          uuid.NewString() + "@example.com",
		FullName:       "Test User",
		HashedPassword: "hash",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func newProject(t *testing.T, s repositories.Store, ownerID, name string, createdAt time.Time) *models.Project {
	t.Helper()
	p := &models.Project{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Name:        name,
		Description: "description of " + name,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, s.Projects().Create(context.Background(), p))
	return p
}

func newTask(t *testing.T, s repositories.Store, projectID, title string, createdAt time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Status:    models.TaskStatusTodo,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, s.Tasks().Create(context.Background(), task))
	return task
}

func testUsers(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	got, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.FullName, got.FullName)
	assert.Equal(t, u.HashedPassword, got.HashedPassword)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))

	got, err = s.Users().FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.Users().Create(ctx, &dup), repositories.ErrDuplicateEmail)

	_, err = s.Users().FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	_, err = s.Users().FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func testProjects(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	owner := newUser(t, s)
	other := newUser(t, s)

	base := models.Now().Add(-time.Hour)
	older := newProject(t, s, owner.ID, "older", base)
	newer := newProject(t, s, owner.ID, "newer", base.Add(time.Minute))
	foreign := newProject(t, s, other.ID, "foreign", base.Add(2*time.Minute))

	list, err := s.Projects().ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	for _, p := range list {
		assert.NotEqual(t, foreign.ID, p.ID)
	}

	empty, err := s.Projects().ListByOwner(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, empty)

	name := "renamed"
	updatedAt := base.Add(time.Hour)
	require.NoError(t, s.Projects().Update(ctx, older.ID, models.ProjectPatch{Name: &name}, updatedAt))

	got, err := s.Projects().FindByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, older.Description, got.Description)
	assert.Equal(t, owner.ID, got.UserID)
	assert.True(t, updatedAt.Equal(got.UpdatedAt))
	assert.True(t, older.CreatedAt.Equal(got.CreatedAt))

	_, err = s.Projects().FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repositories.ErrProjectNotFound)
}

func testTasks(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	owner := newUser(t, s)
	base := models.Now().Add(-time.Hour)
	p := newProject(t, s, owner.ID, "project", base)
	otherProject := newProject(t, s, owner.ID, "other", base)

	first := newTask(t, s, p.ID, "first", base)
	second := newTask(t, s, p.ID, "second", base.Add(time.Minute))
	newTask(t, s, otherProject.ID, "elsewhere", base)

	list, err := s.Tasks().ListByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	due := time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)
	done := models.TaskStatusDone
	updatedAt := base.Add(time.Hour)
	require.NoError(t, s.Tasks().Update(ctx, first.ID, models.TaskPatch{Status: &done, DueDateSet: true, DueDate: &due}, updatedAt))

	got, err := s.Tasks().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, got.Status)
	assert.Equal(t, "first", got.Title)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, updatedAt.Equal(got.UpdatedAt))

	title := "first renamed"
	require.NoError(t, s.Tasks().Update(ctx, first.ID, models.TaskPatch{Title: &title}, updatedAt))
	got, err = s.Tasks().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first renamed", got.Title)
	require.NotNil(t, got.DueDate, "dueDate is kept when not in the patch")

	require.NoError(t, s.Tasks().Update(ctx, first.ID, models.TaskPatch{DueDateSet: true}, updatedAt))
	got, err = s.Tasks().FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DueDate)

	require.NoError(t, s.Tasks().Delete(ctx, second.ID))
	_, err = s.Tasks().FindByID(ctx, second.ID)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
}

func testCascade(t *testing.T, s repositories.Store) {
	ctx := context.Background()
	owner := newUser(t, s)
	base := models.Now()
	doomed := newProject(t, s, owner.ID, "doomed", base)
	kept := newProject(t, s, owner.ID, "kept", base)

	var doomedTasks []*models.Task
	for i := 0; i < 3; i++ {
		doomedTasks = append(doomedTasks, newTask(t, s, doomed.ID, "task", base))
	}
	survivor := newTask(t, s, kept.ID, "survivor", base)

	require.NoError(t, s.Projects().DeleteWithTasks(ctx, doomed.ID))

	_, err := s.Projects().FindByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, repositories.ErrProjectNotFound)
	for _, task := range doomedTasks {
		_, err := s.Tasks().FindByID(ctx, task.ID)
		assert.ErrorIs(t, err, repositories.ErrTaskNotFound)
	}
	list, err := s.Tasks().ListByProject(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Tasks().FindByID(ctx, survivor.ID)
	assert.NoError(t, err)
	_, err = s.Projects().FindByID(ctx, kept.ID)
	assert.NoError(t, err)
}
