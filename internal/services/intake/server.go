package intake

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/obs"
)

const (
	msgAccepted   = "Notification was sent for processing"
	msgValidation = "Validation error"
	msgInternal   = "Internal error"
)

type Server struct {
	engine *gin.Engine
	uc     *Usecase
	log    *zap.Logger
}

func NewServer(log *zap.Logger, uc *Usecase) *Server {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(gin.Recovery())

	s := &Server{engine: e, uc: uc, log: log}

	v1 := e.Group("/v1")
	v1.POST("/notify", s.handleNotify)

	return s
}

// Handler exposes the router so the caller can wrap it (otelhttp) and
// own the http.Server lifecycle.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) handleNotify(c *gin.Context) {
	ctx := c.Request.Context()
	log := obs.WithTrace(ctx, s.log)

	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("malformed notify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": msgValidation})
		return
	}

	if err := s.uc.Notify(ctx, &req); err != nil {
		if errors.Is(err, ErrValidation) {
			log.Warn("notify request rejected", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"message": msgValidation})
			return
		}
		log.Error("notify request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternal})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": msgAccepted})
}
