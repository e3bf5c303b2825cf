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
	msgProjectNotFound     = "Project not found"
	msgProjectUnauthorized = "Unauthorized access to project"
)

// ProjectService はプロジェクトの所有者チェックとCRUDを扱います。
type ProjectService struct {
	projects repositories.ProjectRepository
	newID    func() string
}

// NewProjectService は新しいProjectServiceを作成します。
func NewProjectService(projects repositories.ProjectRepository) *ProjectService {
	return &ProjectService{projects: projects, newID: uuid.NewString}
}

// ListProjects は ownerID のプロジェクトを新しい順に返します。
func (s *ProjectService) ListProjects(ctx context.Context, ownerID string) ([]*models.Project, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return projects, nil
}

// CreateProject は新しいプロジェクトを作成します。
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, req models.CreateProjectRequest) (*models.Project, error) {
	now := models.Now()
	p := &models.Project{
		ID:          s.newID(),
		UserID:      ownerID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return p, nil
}

// GetProject は指定IDのプロジェクトを取得し、認可チェックを行います。
func (s *ProjectService) GetProject(ctx context.Context, projectID, callerID string) (*models.Project, error) {
	return s.authorize(ctx, projectID, callerID)
}

// UpdateProject は指定フィールドだけを更新し、書き込み後の状態を読み直して返します。
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, callerID string, patch models.ProjectPatch) (*models.Project, error) {
	if _, err := s.authorize(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, projectID, patch, models.Now()); err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperr.NotFound(msgProjectNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	updated, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperr.NotFound(msgProjectNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	return updated, nil
}

// DeleteProject はプロジェクトとそのタスクをまとめて削除します。
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, callerID string) error {
	if _, err := s.authorize(ctx, projectID, callerID); err != nil {
		return err
	}
	if err := s.projects.DeleteWithTasks(ctx, projectID); err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return apperr.NotFound(msgProjectNotFound)
		}
		return apperr.Internal(msgInternal, err)
	}
	return nil
}

// authorize は存在チェックの後に所有者チェックを行います。
// 他人のプロジェクトは存在する限り常に403です。
func (s *ProjectService) authorize(ctx context.Context, projectID, callerID string) (*models.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return nil, apperr.NotFound(msgProjectNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	if p.UserID != callerID {
		return nil, apperr.Forbidden(msgProjectUnauthorized)
	}
	return p, nil
}
