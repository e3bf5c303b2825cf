// Package memrepo はプロセス内メモリに保存するリポジトリ実装です。テストと開発用です。
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

// Store はすべてのコレクションを1つのロックで守ります。
// カスケード削除は同じクリティカルセクション内で行うため、途中状態は見えません。
type Store struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]*models.User
	emails   map[string]string
	projects map[string]*projectEntry
	tasks    map[string]*taskEntry
}

type projectEntry struct {
	seq int64
	p   models.Project
}

type taskEntry struct {
	seq int64
	t   models.Task
}

var _ repositories.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		emails:   make(map[string]string),
		projects: make(map[string]*projectEntry),
		tasks:    make(map[string]*taskEntry),
	}
}

func (s *Store) Users() repositories.UserRepository       { return userRepo{s} }
func (s *Store) Projects() repositories.ProjectRepository { return projectRepo{s} }
func (s *Store) Tasks() repositories.TaskRepository       { return taskRepo{s} }

func (s *Store) Ping(ctx context.Context) error  { return ctx.Err() }
func (s *Store) Close(ctx context.Context) error { return nil }

type userRepo struct{ s *Store }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, ok := r.s.emails[key]; ok {
		return repositories.ErrDuplicateEmail
	}
	cp := *u
	r.s.users[u.ID] = &cp
	r.s.emails[key] = u.ID
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *r.s.users[id]
	return &cp, nil
}

type projectRepo struct{ s *Store }

func (r projectRepo) Create(ctx context.Context, p *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq++
	r.s.projects[p.ID] = &projectEntry{seq: r.s.seq, p: *p}
	return nil
}

func (r projectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.projects[id]
	if !ok {
		return nil, repositories.ErrProjectNotFound
	}
	cp := e.p
	return &cp, nil
}

func (r projectRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []*projectEntry
	for _, e := range r.s.projects {
		if e.p.UserID == ownerID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return newerFirst(entries[i].p.CreatedAt, entries[i].seq, entries[j].p.CreatedAt, entries[j].seq)
	})

	out := make([]*models.Project, 0, len(entries))
	for _, e := range entries {
		cp := e.p
		out = append(out, &cp)
	}
	return out, nil
}

func (r projectRepo) Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.projects[id]
	if !ok {
		return repositories.ErrProjectNotFound
	}
	patch.Apply(&e.p, updatedAt)
	return nil
}

func (r projectRepo) DeleteWithTasks(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return repositories.ErrProjectNotFound
	}
	for tid, e := range r.s.tasks {
		if e.t.ProjectID == id {
			delete(r.s.tasks, tid)
		}
	}
	delete(r.s.projects, id)
	return nil
}

type taskRepo struct{ s *Store }

func (r taskRepo) Create(ctx context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq++
	r.s.tasks[t.ID] = &taskEntry{seq: r.s.seq, t: copyTask(*t)}
	return nil
}

func (r taskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.tasks[id]
	if !ok {
		return nil, repositories.ErrTaskNotFound
	}
	cp := copyTask(e.t)
	return &cp, nil
}

func (r taskRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var entries []*taskEntry
	for _, e := range r.s.tasks {
		if e.t.ProjectID == projectID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return newerFirst(entries[i].t.CreatedAt, entries[i].seq, entries[j].t.CreatedAt, entries[j].seq)
	})

	out := make([]*models.Task, 0, len(entries))
	for _, e := range entries {
		cp := copyTask(e.t)
		out = append(out, &cp)
	}
	return out, nil
}

func (r taskRepo) Update(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.tasks[id]
	if !ok {
		return repositories.ErrTaskNotFound
	}
	patch.Apply(&e.t, updatedAt)
	return nil
}

func (r taskRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return repositories.ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// 作成日時が同じなら後から挿入した方を新しいとみなす
func newerFirst(ta time.Time, sa int64, tb time.Time, sb int64) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return sa > sb
}

func copyTask(t models.Task) models.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}
