// Package mongorepo は MongoDB を使ったリポジトリ実装です。
// users, projects, tasks の3コレクションにドキュメントとして保存します。
// カスケード削除はマルチドキュメントトランザクションを使うため、レプリカセット構成が必要です。
package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	projects *mongo.Collection
	tasks    *mongo.Collection
}

var _ repositories.Store = (*Store)(nil)

// Open は MongoDB に接続し、必要なインデックスを作成します。
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		users:    db.Collection("users"),
		projects: db.Collection("projects"),
		tasks:    db.Collection("tasks"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	log.Info().Str("db", database).Msg("connected to MongoDB")
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	if _, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create projects index: %w", err)
	}
	if _, err := s.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("create tasks index: %w", err)
	}
	return nil
}

func (s *Store) Users() repositories.UserRepository       { return userRepo{s.users} }
func (s *Store) Projects() repositories.ProjectRepository { return projectRepo{s} }
func (s *Store) Tasks() repositories.TaskRepository       { return taskRepo{s.tasks} }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type userDoc struct {
	ID             string    `bson:"_id"`
	Email          string    `bson:"email"`
	FullName       string    `bson:"fullName"`
	HashedPassword string    `bson:"hashedPassword"`
	CreatedAt      time.Time `bson:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:             d.ID,
		Email:          d.Email,
		FullName:       d.FullName,
		HashedPassword: d.HashedPassword,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

type projectDoc struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d projectDoc) model() *models.Project {
	return &models.Project{
		ID:          d.ID,
		UserID:      d.UserID,
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
}

type taskDoc struct {
	ID        string     `bson:"_id"`
	ProjectID string     `bson:"projectId"`
	Title     string     `bson:"title"`
	Status    string     `bson:"status"`
	DueDate   *time.Time `bson:"dueDate"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt"`
}

func (d taskDoc) model() *models.Task {
	t := &models.Task{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Title:     d.Title,
		Status:    models.TaskStatus(d.Status),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

type userRepo struct{ c *mongo.Collection }

func (r userRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.c.InsertOne(ctx, userDoc{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		HashedPassword: u.HashedPassword,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repositories.ErrDuplicateEmail
		}
		log.Error().Err(err).Msg("failed to insert user")
		return fmt.Errorf("could not insert user: %w", err)
	}
	return nil
}

func (r userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r userRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var d userDoc
	if err := r.c.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrUserNotFound
		}
		log.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("could not query user: %w", err)
	}
	return d.model(), nil
}

type projectRepo struct{ s *Store }

func (r projectRepo) Create(ctx context.Context, p *models.Project) error {
	_, err := r.s.projects.InsertOne(ctx, projectDoc{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to insert project")
		return fmt.Errorf("could not insert project: %w", err)
	}
	return nil
}

func (r projectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var d projectDoc
	if err := r.s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrProjectNotFound
		}
		log.Error().Err(err).Str("project_id", id).Msg("failed to query project")
		return nil, fmt.Errorf("could not query project: %w", err)
	}
	return d.model(), nil
}

func (r projectRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.s.projects.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")
		return nil, fmt.Errorf("could not list projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode projects: %w", err)
	}
	projects := make([]*models.Project, 0, len(docs))
	for _, d := range docs {
		projects = append(projects, d.model())
	}
	return projects, nil
}

func (r projectRepo) Update(ctx context.Context, id string, patch models.ProjectPatch, updatedAt time.Time) error {
	set := bson.M{"updatedAt": updatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	res, err := r.s.projects.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		log.Error().Err(err).Str("project_id", id).Msg("failed to update project")
		return fmt.Errorf("could not update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrProjectNotFound
	}
	return nil
}

// DeleteWithTasks はセッショントランザクション内でタスクとプロジェクトを削除します。
func (r projectRepo) DeleteWithTasks(ctx context.Context, id string) error {
	sess, err := r.s.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.s.tasks.DeleteMany(sc, bson.M{"projectId": id}); err != nil {
			return nil, err
		}
		res, err := r.s.projects.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, repositories.ErrProjectNotFound
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrProjectNotFound) {
			return err
		}
		log.Error().Err(err).Str("project_id", id).Msg("failed to delete project with tasks")
		return fmt.Errorf("could not delete project: %w", err)
	}
	return nil
}

type taskRepo struct{ c *mongo.Collection }

func (r taskRepo) Create(ctx context.Context, t *models.Task) error {
	_, err := r.c.InsertOne(ctx, taskDoc{
		ID:        t.ID,
		ProjectID: t.ProjectID,
		Title:     t.Title,
		Status:    string(t.Status),
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to insert task")
		return fmt.Errorf("could not insert task: %w", err)
	}
	return nil
}

func (r taskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var d taskDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrTaskNotFound
		}
		log.Error().Err(err).Str("task_id", id).Msg("failed to query task")
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return d.model(), nil
}

func (r taskRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.c.Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode tasks: %w", err)
	}
	tasks := make([]*models.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.model())
	}
	return tasks, nil
}

func (r taskRepo) Update(ctx context.Context, id string, patch models.TaskPatch, updatedAt time.Time) error {
	set := bson.M{"updatedAt": updatedAt}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.DueDateSet {
		set["dueDate"] = patch.DueDate
	}
	res, err := r.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to update task")
		return fmt.Errorf("could not update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrTaskNotFound
	}
	return nil
}

func (r taskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to delete task")
		return fmt.Errorf("could not delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrTaskNotFound
	}
	return nil
}
