// Package repositories はストレージへのアクセスをエンティティごとの狭いインターフェースで定義します。
// 実装は mysqlrepo, mongorepo, surrealrepo, memrepo にあります。
package repositories

import (
	"context"
	"errors"
	"time"

	"taskboard/backend/internal/models"
)

var (
	ErrDuplicateEmail  = errors.New("duplicate email")
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// UserRepository はユーザーの永続化を扱います。ユーザーは削除されません。
type UserRepository interface {
	// Create は u を保存します。メールアドレスが重複していれば ErrDuplicateEmail を返します。
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id string) (*models.Project, error)
	// ListByOwner は ownerID のプロジェクトを作成日時の新しい順に返します。
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error
	// DeleteWithTasks はプロジェクトとそれに属するすべてのタスクを1つのトランザクションで削除します。
	// 一部だけが削除された状態は観測されません。
	DeleteWithTasks(ctx context.Context, id string) error
}

type TaskRepository interface {
	Create(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id string) (*models.Task, error)
	// ListByProject は projectID のタスクを作成日時の新しい順に返します。
	ListByProject(ctx context.Context, projectID string) ([]*models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Store はリポジトリ一式と接続のライフサイクルをまとめたハンドルです。
type Store interface {
	Users() UserRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
