// Package mysqlrepo は MySQL を使ったリポジトリ実装です。
package mysqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

// MySQLの重複エントリーエラーコード
const errDuplicateEntry = 1062

// Store は *sql.DB をラップしてリポジトリ一式を提供します。
type Store struct {
	DB *sql.DB
}

var _ repositories.Store = (*Store)(nil)

// NewStore は新しいStoreインスタンスを作成します。
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Users() repositories.UserRepository       { return &UserRepository{DB: s.DB} }
func (s *Store) Projects() repositories.ProjectRepository { return &ProjectRepository{DB: s.DB} }
func (s *Store) Tasks() repositories.TaskRepository       { return &TaskRepository{DB: s.DB} }

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.DB.Close()
}

// UserRepository はusersテーブルを操作します。
type UserRepository struct {
	DB *sql.DB
}

// Create は新しいユーザーをデータベースに挿入します。
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := "INSERT INTO users (id, email, full_name, hashed_password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.DB.ExecContext(ctx, query, u.ID, u.Email, u.FullName, u.HashedPassword, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
			return repositories.ErrDuplicateEmail
		}
		log.Error().Err(err).Msg("failed to insert user")
		return fmt.Errorf("could not insert user: %w", err)
	}
	return nil
}

const userColumns = "id, email, full_name, hashed_password, created_at, updated_at"

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// FindByEmail はメールアドレスでユーザーを検索します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.HashedPassword,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrUserNotFound
		}
		log.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return &u, nil
}

// ProjectRepository はprojectsテーブルを操作します。
type ProjectRepository struct {
	DB *sql.DB
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	query := "INSERT INTO projects (id, user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := r.DB.ExecContext(ctx, query, p.ID, p.UserID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt); err != nil {
		log.Error().Err(err).Msg("failed to insert project")
		return fmt.Errorf("could not insert project: %w", err)
	}
	return nil
}

const projectColumns = "id, user_id, name, description, created_at, updated_at"

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	err := r.DB.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrProjectNotFound
		}
		log.Error().Err(err).Str("project_id", id).Msg("failed to query project")
		return nil, fmt.Errorf("could not query project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE user_id = ? ORDER BY created_at DESC, seq DESC", ownerID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		return nil, fmt.Errorf("could not list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("could not scan project: %w", err)
		}
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error {
	sets := []string{"updated_at = ?"}
	args := []any{updatedAt}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, id)

	query := "UPDATE projects SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to update project")
		return fmt.Errorf("could not update project: %w", err)
	}
	return nil
}

// DeleteWithTasks はタスクとプロジェクトを1つのトランザクションで削除します。
func (r *ProjectRepository) DeleteWithTasks(ctx context.Context, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error().Err(rbErr).Str("project_id", id).Msg("failed to roll back cascade delete")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM tasks WHERE project_id = ?", id); err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to delete project tasks")
		return fmt.Errorf("could not delete tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to delete project")
		return fmt.Errorf("could not delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		err = repositories.ErrProjectNotFound
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit cascade delete: %w", err)
	}
	return nil
}

// TaskRepository はtasksテーブルを操作します。
type TaskRepository struct {
	DB *sql.DB
}

func (r *TaskRepository) Create(ctx context.Context, t *models.Task) error {
	query := "INSERT INTO tasks (id, project_id, title, status, due_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	if _, err := r.DB.ExecContext(ctx, query, t.ID, t.ProjectID, t.Title, string(t.Status), t.DueDate, t.CreatedAt, t.UpdatedAt); err != nil {
		log.Error().Err(err).Msg("failed to insert task")
		return fmt.Errorf("could not insert task: %w", err)
	}
	return nil
}

const taskColumns = "id, project_id, title, status, due_date, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t      models.Task
		status string
		due    sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &status, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = models.TaskStatus(status)
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	t, err := scanTask(r.DB.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrTaskNotFound
		}
		log.Error().Err(err).Str("task_id", id).Msg("failed to query task")
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE project_id = ? ORDER BY created_at DESC, seq DESC", projectID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	sets := []string{"updated_at = ?"}
	args := []any{updatedAt}
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.DueDateSet {
		sets = append(sets, "due_date = ?")
		args = append(args, patch.DueDate)
	}
	args = append(args, id)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to update task")
		return fmt.Errorf("could not update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to delete task")
		return fmt.Errorf("could not delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return repositories.ErrTaskNotFound
	}
	return nil
}
