package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/repositories/memrepo"
	"taskboard/backend/internal/routes"
	"taskboard/backend/internal/services"
)

const (
	TestJWTSecret = "test-secret"
	TestPassword  = "password123"
)

// Envelope はレスポンスの共通形です。data は呼び出し側でデコードします。
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// SetupTestRouter はインメモリストアを使うテスト用のGinルーターをセットアップします。
func SetupTestRouter(t *testing.T) (*gin.Engine, *memrepo.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memrepo.New()
	r := routes.SetupRouter(routes.Deps{
		HTTP: config.HTTPConfig{
			BasePath:       "/api",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Logger: zerolog.Nop(),
		Store:  store,
		Tokens: services.NewJWTService(TestJWTSecret, time.Hour),
	})
	return r, store
}

// DoJSON はJSONリクエストを送り、レスポンスを返します。token が空なら Authorization を付けません。
func DoJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return Record(router, req)
}

// Record は req をルーターに流してレスポンスを記録します。
func Record(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope はレスポンスボディを Envelope として読み、data を out にデコードします。
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, out any) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

// RegisterAndGetToken はユーザーを登録し、トークンとユーザーIDを返します。
func RegisterAndGetToken(t *testing.T, router http.Handler, email string) (string, string) {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"fullName": "Test User",
		"email":    email,
		"password": TestPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, "ユーザー登録に失敗しました: %s", w.Body.String())

	var res models.AuthResponse
	DecodeEnvelope(t, w, &res)
	require.NotEmpty(t, res.Token)
	return res.Token, res.User.ID
}

// CreateTestProject はテスト用のプロジェクトをAPI経由で作成します。
func CreateTestProject(t *testing.T, router http.Handler, token, name string) models.ProjectResponse {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/projects", token, map[string]string{
		"name":        name,
		"description": "created by test",
	})
	require.Equal(t, http.StatusCreated, w.Code, "プロジェクト作成に失敗しました: %s", w.Body.String())

	var p models.ProjectResponse
	DecodeEnvelope(t, w, &p)
	return p
}

// CreateTestTask はテスト用のタスクをAPI経由で作成します。
func CreateTestTask(t *testing.T, router http.Handler, token, projectID, title string) models.TaskResponse {
	t.Helper()
	w := DoJSON(t, router, http.MethodPost, "/api/projects/"+projectID+"/tasks", token, map[string]string{
		"title": title,
	})
	require.Equal(t, http.StatusCreated, w.Code, "タスク作成に失敗しました: %s", w.Body.String())

	var task models.TaskResponse
	DecodeEnvelope(t, w, &task)
	return task
}
