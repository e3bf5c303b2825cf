package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/apperr"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
	"taskboard/backend/internal/repositories/memrepo"
)

func requireKind(t *testing.T, err error, kind apperr.Kind, message string) {
	t.Helper()
	e, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %v", err)
	assert.Equal(t, kind, e.Kind)
	assert.Equal(t, message, e.Message)
}

func strPtr(s string) *string { return &s }

func TestProjectService_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()
	s := NewProjectService(store.Projects())

	mine, err := s.CreateProject(ctx, "alice", models.CreateProjectRequest{Name: "P1", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "alice", mine.UserID)
	assert.Equal(t, mine.CreatedAt, mine.UpdatedAt)
	_, err = s.CreateProject(ctx, "bob", models.CreateProjectRequest{Name: "P2", Description: "d"})
	require.NoError(t, err)

	list, err := s.ListProjects(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	got, err := s.GetProject(ctx, mine.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "P1", got.Name)

	_, err = s.GetProject(ctx, mine.ID, "bob")
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")
	_, err = s.UpdateProject(ctx, mine.ID, "bob", models.ProjectPatch{Name: strPtr("stolen")})
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")
	err = s.DeleteProject(ctx, mine.ID, "bob")
	requireKind(t, err, apperr.KindForbidden, "Unauthorized access to project")

	_, err = s.GetProject(ctx, "missing", "bob")
	requireKind(t, err, apperr.KindNotFound, "Project not found")

	unchanged, err := s.GetProject(ctx, mine.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "P1", unchanged.Name)
}

func TestProjectService_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()
	s := NewProjectService(store.Projects())

	p, err := s.CreateProject(ctx, "alice", models.CreateProjectRequest{Name: "P1", Description: "original"})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	updated, err := s.UpdateProject(ctx, p.ID, "alice", models.ProjectPatch{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "original", updated.Description)
	assert.True(t, updated.UpdatedAt.After(p.UpdatedAt))
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)
}

func TestProjectService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()
	projects := NewProjectService(store.Projects())
	tasks := NewTaskService(projects, store.Tasks())

	p, err := projects.CreateProject(ctx, "alice", models.CreateProjectRequest{Name: "P1", Description: "d"})
	require.NoError(t, err)
	task, err := tasks.CreateTask(ctx, p.ID, "alice", models.CreateTaskRequest{Title: "T1"})
	require.NoError(t, err)

	require.NoError(t, projects.DeleteProject(ctx, p.ID, "alice"))

	_, err = projects.GetProject(ctx, p.ID, "alice")
	requireKind(t, err, apperr.KindNotFound, "Project not found")
	_, err = store.Tasks().FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, repositories.ErrTaskNotFound)

	err = projects.DeleteProject(ctx, p.ID, "alice")
	requireKind(t, err, apperr.KindNotFound, "Project not found")
}

type brokenProjects struct {
	repositories.ProjectRepository
}

func (brokenProjects) FindByID(ctx context.Context, id string) (*models.Project, error) {
	return nil, errors.New("connection refused")
}

func (brokenProjects) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	return nil, errors.New("connection refused")
}

func TestProjectService_StorageErrorsAreInternal(t *testing.T) {
	ctx := context.Background()
	s := NewProjectService(brokenProjects{})

	_, err := s.ListProjects(ctx, "alice")
	requireKind(t, err, apperr.KindInternal, "Internal server error")
	_, err = s.GetProject(ctx, "p1", "alice")
	requireKind(t, err, apperr.KindInternal, "Internal server error")
}
