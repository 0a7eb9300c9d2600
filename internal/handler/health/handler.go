package health

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/the1323/cs166-project-the033-hbai013/pkg/errors"
	"github.com/the1323/cs166-project-the033-hbai013/pkg/httputil"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db      Pinger
	timeout time.Duration
}

func NewHandler(db Pinger) *Handler {
	return &Handler{
		db:      db,
		timeout: 2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	httputil.RespondWithSuccess(c, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		httputil.RespondWithError(c, apperrors.NotAvailable("database", err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"status": "UP"})
}
