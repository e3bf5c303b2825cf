package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"taskboard/backend/internal/apperr"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

const (
	msgTaskNotFound     = "Task not found"
	msgTaskWrongProject = "Task does not belong to this project"
)

// TaskService はタスクのCRUDを扱います。
// すべての操作は親プロジェクトの所有者チェックを先に行います。
type TaskService struct {
	projects *ProjectService
	tasks    repositories.TaskRepository
	newID    func() string
}

func NewTaskService(projects *ProjectService, tasks repositories.TaskRepository) *TaskService {
	return &TaskService{projects: projects, tasks: tasks, newID: uuid.NewString}
}

func (s *TaskService) ListTasks(ctx context.Context, projectID, callerID string) ([]*models.Task, error) {
	if _, err := s.projects.authorize(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return tasks, nil
}

// CreateTask はタスクを作成します。status 省略時は todo です。
func (s *TaskService) CreateTask(ctx context.Context, projectID, callerID string, req models.CreateTaskRequest) (*models.Task, error) {
	if _, err := s.projects.authorize(ctx, projectID, callerID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	now := models.Now()
	t := &models.Task{
		ID:        s.newID(),
		ProjectID: projectID,
		Title:     req.Title,
		Status:    status,
		DueDate:   req.DueDate.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, projectID, taskID, callerID string) (*models.Task, error) {
	return s.authorize(ctx, projectID, taskID, callerID)
}

// UpdateTask は指定フィールドだけを更新し、書き込み後の状態を読み直して返します。
func (s *TaskService) UpdateTask(ctx context.Context, projectID, taskID, callerID string, patch models.TaskPatch) (*models.Task, error) {
	if _, err := s.authorize(ctx, projectID, taskID, callerID); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, taskID, patch, models.Now()); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperr.NotFound(msgTaskNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	updated, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperr.NotFound(msgTaskNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, projectID, taskID, callerID string) error {
	if _, err := s.authorize(ctx, projectID, taskID, callerID); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return apperr.NotFound(msgTaskNotFound)
		}
		return apperr.Internal(msgInternal, err)
	}
	return nil
}

// authorize は 親プロジェクトの所有者 → タスクの存在 → projectId の一致 の順に確認します。
func (s *TaskService) authorize(ctx context.Context, projectID, taskID, callerID string) (*models.Task, error) {
	if _, err := s.projects.authorize(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			return nil, apperr.NotFound(msgTaskNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	if t.ProjectID != projectID {
		return nil, apperr.Forbidden(msgTaskWrongProject)
	}
	return t, nil
}
