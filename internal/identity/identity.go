// Package identity はユーザーIDを発行・確認する認証プロバイダを定義します。
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"taskboard/backend/internal/apperr"
	"taskboard/backend/internal/repositories"
)

// MinPasswordLength はプロバイダが受け付けるパスワードの最小長です。
const MinPasswordLength = 6

// Error はプロバイダのエラーです。Code は apperr.FromProviderCode で分類に変換できます。
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Record はプロバイダが管理するユーザーの識別情報です。
type Record struct {
	UID         string
	Email       string
	DisplayName string
}

type CreateUserParams struct {
	Email       string
	Password    string
	DisplayName string
}

// Provider はユーザーIDの発行と存在確認を行います。
type Provider interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*Record, error)
	GetUser(ctx context.Context, uid string) (*Record, error)
}

// LocalProvider はユーザーストアを台帳として使うプロバイダです。
// ID は UUID で発行し、ユーザードキュメントの保存は呼び出し側が行います。
type LocalProvider struct {
	users    repositories.UserRepository
	validate *validator.Validate
	newUID   func() string
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(users repositories.UserRepository) *LocalProvider {
	return &LocalProvider{
		users:    users,
		validate: validator.New(),
		newUID:   uuid.NewString,
	}
}

func (p *LocalProvider) CreateUser(ctx context.Context, params CreateUserParams) (*Record, error) {
	if err := p.validate.Var(params.Email, "required,email"); err != nil {
		return nil, &Error{Code: apperr.CodeInvalidEmail, Err: err}
	}
	if len(params.Password) < MinPasswordLength {
		return nil, &Error{Code: apperr.CodeWeakPassword}
	}

	_, err := p.users.FindByEmail(ctx, params.Email)
	switch {
	case err == nil:
		return nil, &Error{Code: apperr.CodeEmailAlreadyExists}
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	return &Record{
		UID:         p.newUID(),
		Email:       params.Email,
		DisplayName: params.DisplayName,
	}, nil
}

func (p *LocalProvider) GetUser(ctx context.Context, uid string) (*Record, error) {
	u, err := p.users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, &Error{Code: apperr.CodeUserNotFound, Err: err}
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &Record{UID: u.ID, Email: u.Email, DisplayName: u.FullName}, nil
}
