package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"taskboard/backend/internal/apperr"
	"taskboard/backend/internal/identity"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories"
)

const (
	msgEmailExists        = "An account with this email already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgAuthError          = "User authentication error"
	msgUserNotFound       = "User not found"
	msgInternal           = "Internal server error"
)

// UserCache はユーザープロフィールのキャッシュです。
type UserCache interface {
	Get(ctx context.Context, id string) (*models.User, bool, error)
	Set(ctx context.Context, u *models.User) error
}

// UserService は登録・サインイン・プロフィール取得を扱います。
type UserService struct {
	users    repositories.UserRepository
	provider identity.Provider
	tokens   *JWTService
	cache    UserCache
	sf       singleflight.Group
}

// NewUserService は新しいUserServiceを作成します。cache は nil でも構いません。
func NewUserService(users repositories.UserRepository, provider identity.Provider, tokens *JWTService, cache UserCache) *UserService {
	return &UserService{users: users, provider: provider, tokens: tokens, cache: cache}
}

// RegisterUser はユーザーを登録し、トークンを発行します。
func (s *UserService) RegisterUser(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Conflict(msgEmailExists)
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperr.Internal(msgInternal, err)
	}

	rec, err := s.provider.CreateUser(ctx, identity.CreateUserParams{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.FullName,
	})
	if err != nil {
		return nil, providerError(err)
	}

	hashedPassword, err := repositories.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		return nil, apperr.Internal(msgInternal, err)
	}

	now := models.Now()
	user := &models.User{
		ID:             rec.UID,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperr.Conflict(msgEmailExists)
		}
		return nil, apperr.Internal(msgInternal, err)
	}

	return s.issue(user)
}

// AuthenticateUser はメールアドレスとパスワードでユーザーを認証し、トークンを発行します。
func (s *UserService) AuthenticateUser(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, apperr.Internal(msgInternal, err)
	}

	if err := repositories.VerifyPassword(user.HashedPassword, req.Password); err != nil {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	if _, err := s.provider.GetUser(ctx, user.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("identity provider lookup failed")
		return nil, apperr.Internal(msgAuthError, err)
	}

	return s.issue(user)
}

// GetUser はユーザープロフィールを返します。キャッシュがあれば先に参照し、
// 同じユーザーへの同時リクエストはストアへの1回の読み込みにまとめます。
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	if s.cache != nil {
		if u, ok, err := s.cache.Get(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("user cache get failed")
		} else if ok {
			return u, nil
		}
	}

	v, err, _ := s.sf.Do(userID, func() (interface{}, error) {
		u, err := s.users.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, u); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("user cache set failed")
			}
		}
		return u, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperr.NotFound(msgUserNotFound)
		}
		return nil, apperr.Internal(msgInternal, err)
	}
	u := *v.(*models.User)
	return &u, nil
}

func (s *UserService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(models.Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		return nil, apperr.Internal(msgInternal, err)
	}
	return &models.AuthResponse{Token: token, User: models.NewUserResponse(user)}, nil
}

func providerError(err error) error {
	var perr *identity.Error
	if errors.As(err, &perr) {
		return apperr.FromProviderCode(perr.Code, err)
	}
	return apperr.FromProviderCode("", err)
}
