// Package handlers はHTTPエンドポイントを提供します。
// すべてのレスポンスは {success, message, data} の形に揃えます。
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"taskboard/backend/internal/apperr"
)

const (
	msgInvalidPayload = "Invalid request payload"
	msgInternal       = "Internal server error"
)

// Response はすべてのエンドポイントが返す共通の形です。
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// respondError は err を分類に応じたステータスで返します。
// 分類されていないエラーと500の原因はログにだけ残します。
func respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
		c.Error(err)
		c.JSON(http.StatusInternalServerError, Response{Message: msgInternal})
		return
	}
	if e.Kind == apperr.KindInternal {
		log.Error().Err(e).Str("path", c.Request.URL.Path).Msg("internal error")
		c.Error(e)
	}
	c.JSON(e.Kind.HTTPStatus(), Response{Message: e.Message})
}

type selfValidator interface {
	Validate() []string
}

// bindJSON はリクエストボディを obj にバインドし、検証エラーを1つのメッセージにまとめます。
func bindJSON(c *gin.Context, obj any) error {
	var msgs []string
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperr.Validation(msgInvalidPayload)
		}
		msgs = validationMessages(verrs)
	}
	if v, ok := obj.(selfValidator); ok {
		msgs = append(msgs, v.Validate()...)
	}
	if len(msgs) > 0 {
		return apperr.Validation(strings.Join(msgs, ", "))
	}
	return nil
}
