// Package surrealrepo は SurrealDB を使ったリポジトリ実装です。
//
// レコードIDは "table:uuid" 形式です。日時はUnixミリ秒の整数で保存します。
// カスケード削除は BEGIN/COMMIT TRANSACTION を1回のクエリで送ります。
package surrealrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	domain "taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

var errStatementFailed = errors.New("surrealdb statement failed")

const (
	tableUsers    = "users"
	tableProjects = "projects"
	tableTasks    = "tasks"
)

type Config struct {
	URL       string
	Namespace string
	Database  string
	User      string
	Password  string
}

type Store struct {
	db *surrealdb.DB
}

var _ repositories.Store = (*Store)(nil)

// Open は SurrealDB に接続し、認証と名前空間の選択、スキーマ定義を行います。
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect surrealdb: %w", err)
	}
	if cfg.User != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.User,
			"pass": cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("surrealdb sign in: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("surrealdb use %s/%s: %w", cfg.Namespace, cfg.Database, err)
	}

	s := &Store{db: db}
	if err := s.defineSchema(ctx); err != nil {
		_ = db.Close(ctx)
		return nil, err
	}
	log.Info().Str("ns", cfg.Namespace).Str("db", cfg.Database).Msg("connected to SurrealDB")
	return s, nil
}

func (s *Store) defineSchema(ctx context.Context) error {
	const schema = `
		DEFINE INDEX IF NOT EXISTS users_email ON TABLE users FIELDS email UNIQUE;
		DEFINE INDEX IF NOT EXISTS projects_owner ON TABLE projects FIELDS userId;
		DEFINE INDEX IF NOT EXISTS tasks_project ON TABLE tasks FIELDS projectId;
	`
	return s.exec(ctx, schema, nil)
}

func (s *Store) Users() repositories.UserRepository       { return userRepo{s} }
func (s *Store) Projects() repositories.ProjectRepository { return projectRepo{s} }
func (s *Store) Tasks() repositories.TaskRepository       { return taskRepo{s} }

func (s *Store) Ping(ctx context.Context) error {
	return s.exec(ctx, "RETURN true;", nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

// exec はクエリを実行し、どれかの文が失敗していればエラーを返します。
func (s *Store) exec(ctx context.Context, sql string, vars map[string]any) error {
	res, err := surrealdb.Query[any](ctx, s.db, sql, vars)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}
	for i, r := range *res {
		if r.Status != "OK" {
			return fmt.Errorf("%w: statement %d: status %s: %v", errStatementFailed, i, r.Status, r.Result)
		}
	}
	return nil
}

// selectAll はクエリ結果の最初の文の行を返します。
func selectAll[T any](ctx context.Context, s *Store, sql string, vars map[string]any) ([]T, error) {
	res, err := surrealdb.Query[[]T](ctx, s.db, sql, vars)
	if err != nil {
		return nil, err
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	first := (*res)[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("%w: status %s", errStatementFailed, first.Status)
	}
	return first.Result, nil
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func recordKey(id *models.RecordID) string {
	if id == nil {
		return ""
	}
	if s, ok := id.ID.(string); ok {
		return s
	}
	return fmt.Sprint(id.ID)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already contains")
}

type userRecord struct {
	ID             *models.RecordID `json:"id,omitempty"`
	Email          string           `json:"email"`
	FullName       string           `json:"fullName"`
	HashedPassword string           `json:"hashedPassword"`
	CreatedAt      int64            `json:"createdAt"`
	UpdatedAt      int64            `json:"updatedAt"`
}

func (r userRecord) model() *domain.User {
	return &domain.User{
		ID:             recordKey(r.ID),
		Email:          r.Email,
		FullName:       r.FullName,
		HashedPassword: r.HashedPassword,
		CreatedAt:      fromMillis(r.CreatedAt),
		UpdatedAt:      fromMillis(r.UpdatedAt),
	}
}

type projectRecord struct {
	ID          *models.RecordID `json:"id,omitempty"`
	UserID      string           `json:"userId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatedAt   int64            `json:"createdAt"`
	UpdatedAt   int64            `json:"updatedAt"`
}

func (r projectRecord) model() *domain.Project {
	return &domain.Project{
		ID:          recordKey(r.ID),
		UserID:      r.UserID,
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
}

type taskRecord struct {
	ID        *models.RecordID `json:"id,omitempty"`
	ProjectID string           `json:"projectId"`
	Title     string           `json:"title"`
	Status    string           `json:"status"`
	DueDate   *int64           `json:"dueDate,omitempty"`
	CreatedAt int64            `json:"createdAt"`
	UpdatedAt int64            `json:"updatedAt"`
}

func (r taskRecord) model() *domain.Task {
	t := &domain.Task{
		ID:        recordKey(r.ID),
		ProjectID: r.ProjectID,
		Title:     r.Title,
		Status:    domain.TaskStatus(r.Status),
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
	if r.DueDate != nil {
		due := fromMillis(*r.DueDate)
		t.DueDate = &due
	}
	return t
}

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := surrealdb.Create[userRecord](ctx, r.s.db, models.NewRecordID(tableUsers, u.ID), map[string]any{
		"email":          u.Email,
		"fullName":       u.FullName,
		"hashedPassword": u.HashedPassword,
		"createdAt":      millis(u.CreatedAt),
		"updatedAt":      millis(u.UpdatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicateEmail
		}
		log.Error().Err(err).Msg("failed to create user")
		return fmt.Errorf("could not insert user: %w", err)
	}
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	rec, err := surrealdb.Select[userRecord](ctx, r.s.db, models.NewRecordID(tableUsers, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to select user")
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, repositories.ErrUserNotFound
	}
	return rec.model(), nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	rows, err := selectAll[userRecord](ctx, r.s, "SELECT * FROM users WHERE email = $email LIMIT 1", map[string]any{
		"email": email,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to query user by email")
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	if len(rows) == 0 {
		return nil, repositories.ErrUserNotFound
	}
	return rows[0].model(), nil
}

type projectRepo struct{ s *Store }

func (r projectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := surrealdb.Create[projectRecord](ctx, r.s.db, models.NewRecordID(tableProjects, p.ID), map[string]any{
		"userId":      p.UserID,
		"name":        p.Name,
		"description": p.Description,
		"createdAt":   millis(p.CreatedAt),
		"updatedAt":   millis(p.UpdatedAt),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create project")
		return fmt.Errorf("could not insert project: %w", err)
	}
	return nil
}

func (r projectRepo) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	rec, err := surrealdb.Select[projectRecord](ctx, r.s.db, models.NewRecordID(tableProjects, id))
	if err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to select project")
		return nil, fmt.Errorf("could not query project: %w", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, repositories.ErrProjectNotFound
	}
	return rec.model(), nil
}

func (r projectRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Project, error) {
	rows, err := selectAll[projectRecord](ctx, r.s, "SELECT * FROM projects WHERE userId = $owner ORDER BY createdAt DESC", map[string]any{
		"owner": ownerID,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		return nil, fmt.Errorf("could not list projects: %w", err)
	}
	projects := make([]*domain.Project, 0, len(rows))
	for _, row := range rows {
		projects = append(projects, row.model())
	}
	return projects, nil
}

func (r projectRepo) Update(ctx context.Context, id string, patch domain.ProjectPatch, updatedAt time.Time) error {
	data := map[string]any{"updatedAt": millis(updatedAt)}
	if patch.Name != nil {
		data["name"] = *patch.Name
	}
	if patch.Description != nil {
		data["description"] = *patch.Description
	}
	err := r.s.exec(ctx, "UPDATE $rid MERGE $data;", map[string]any{
		"rid":  models.NewRecordID(tableProjects, id),
		"data": data,
	})
	if err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to update project")
		return fmt.Errorf("could not update project: %w", err)
	}
	return nil
}

// DeleteWithTasks はタスクとプロジェクトの削除を1つのトランザクションとして実行します。
func (r projectRepo) DeleteWithTasks(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	const cascade = `
		BEGIN TRANSACTION;
		DELETE tasks WHERE projectId = $project;
		DELETE $rid;
		COMMIT TRANSACTION;
	`
	err := r.s.exec(ctx, cascade, map[string]any{
		"project": id,
		"rid":     models.NewRecordID(tableProjects, id),
	})
	if err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to delete project with tasks")
		return fmt.Errorf("could not delete project: %w", err)
	}
	return nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) Create(ctx context.Context, t *domain.Task) error {
	data := map[string]any{
		"projectId": t.ProjectID,
		"title":     t.Title,
		"status":    string(t.Status),
		"createdAt": millis(t.CreatedAt),
		"updatedAt": millis(t.UpdatedAt),
	}
	if t.DueDate != nil {
		data["dueDate"] = millis(*t.DueDate)
	}
	if _, err := surrealdb.Create[taskRecord](ctx, r.s.db, models.NewRecordID(tableTasks, t.ID), data); err != nil {
		log.Error().Err(err).Msg("failed to create task")
		return fmt.Errorf("could not insert task: %w", err)
	}
	return nil
}

func (r taskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	rec, err := surrealdb.Select[taskRecord](ctx, r.s.db, models.NewRecordID(tableTasks, id))
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to select task")
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	if rec == nil || rec.ID == nil {
		return nil, repositories.ErrTaskNotFound
	}
	return rec.model(), nil
}

func (r taskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	rows, err := selectAll[taskRecord](ctx, r.s, "SELECT * FROM tasks WHERE projectId = $project ORDER BY createdAt DESC", map[string]any{
		"project": projectID,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	tasks := make([]*domain.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.model())
	}
	return tasks, nil
}

func (r taskRepo) Update(ctx context.Context, id string, patch domain.TaskPatch, updatedAt time.Time) error {
	data := map[string]any{"updatedAt": millis(updatedAt)}
	if patch.Title != nil {
		data["title"] = *patch.Title
	}
	if patch.Status != nil {
		data["status"] = string(*patch.Status)
	}
	if patch.DueDateSet {
		if patch.DueDate == nil {
			// NONE をマージするとフィールドが削除される
			data["dueDate"] = models.None
		} else {
			data["dueDate"] = millis(*patch.DueDate)
		}
	}
	err := r.s.exec(ctx, "UPDATE $rid MERGE $data;", map[string]any{
		"rid":  models.NewRecordID(tableTasks, id),
		"data": data,
	})
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to update task")
		return fmt.Errorf("could not update task: %w", err)
	}
	return nil
}

func (r taskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	if _, err := surrealdb.Delete[taskRecord](ctx, r.s.db, models.NewRecordID(tableTasks, id)); err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to delete task")
		return fmt.Errorf("could not delete task: %w", err)
	}
	return nil
}
