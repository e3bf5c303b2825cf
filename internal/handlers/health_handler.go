package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Pinger はストアの疎通確認です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler はストアへの疎通を確認します。
func HealthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Error().Err(err).Msg("store ping failed")
			c.JSON(http.StatusServiceUnavailable, Response{Message: "Store connection failed", Data: gin.H{"store": "down"}})
			return
		}
		respondOK(c, http.StatusOK, "OK", gin.H{"store": "up"})
	}
}
