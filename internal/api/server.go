package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"statforest/internal/data"
	"statforest/internal/features"
	"statforest/internal/models"
	"statforest/internal/store"
)

// Server serves predictions from one named model record. The record is loaded at start
// and on POST /reload; until one loads, prediction routes answer 503.
type Server struct {
	store     store.Store
	modelName string
	apiKey    string
	logger    *zap.Logger

	mu       sync.RWMutex
	record   *store.ModelRecord
	pipeline *models.Pipeline
}

func NewServer(st store.Store, modelName, apiKey string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: st, modelName: modelName, apiKey: apiKey, logger: logger}
}

// Reload fetches the record from the store and swaps it in. On failure the previous model
// keeps serving.
func (s *Server) Reload(ctx context.Context) error {
	rec, err := s.store.Load(ctx, s.modelName)
	if err != nil {
		return err
	}
	p, err := rec.Pipeline()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.record, s.pipeline = rec, p
	s.mu.Unlock()
	s.logger.Info("model loaded",
		zap.String("name", rec.Name),
		zap.Time("created_at", rec.CreatedAt),
		zap.Int("trees", len(p.Forest.Trees)),
		zap.Float64("test_r2", rec.TestMetrics.R2),
	)
	return nil
}

func (s *Server) current() (*store.ModelRecord, *models.Pipeline) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record, s.pipeline
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger)

	r.GET("/healthz", s.handleHealth)
	r.GET("/model", s.handleModel)

	api := r.Group("/")
	api.Use(s.apiKeyMiddleware)
	api.POST("/predict", s.handlePredict)
	api.POST("/predict/game", s.handlePredictGame)
	api.POST("/batch", s.handleBatch)
	api.POST("/reload", s.handleReload)
	return r
}

func (s *Server) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
	)
}

func (s *Server) apiKeyMiddleware(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleHealth(c *gin.Context) {
	rec, _ := s.current()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_loaded": rec != nil})
}

func (s *Server) handleModel(c *gin.Context) {
	rec, p := s.current()
	if rec == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":            rec.Name,
		"createdAt":       rec.CreatedAt,
		"hyperparameters": rec.Hyperparameters,
		"featureNames":    rec.FeatureNames,
		"trainMetrics":    rec.TrainMetrics,
		"testMetrics":     rec.TestMetrics,
		"importance":      rec.Importance,
		"stats":           p.Forest.Stats(),
	})
}

// predictReq carries one raw feature vector. Standardized marks features already scaled
// with the model's parameters.
type predictReq struct {
	Features     []float64 `json:"features" binding:"required,min=1"`
	Standardized bool      `json:"standardized"`
}

type batchReq struct {
	Rows         [][]float64 `json:"rows" binding:"required,min=1,dive,min=1"`
	Standardized bool        `json:"standardized"`
}

func (s *Server) handlePredict(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, p := s.current()
	if rec == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	var (
		pred float64
		err  error
	)
	if req.Standardized {
		pred, err = p.Forest.Predict(req.Features)
	} else {
		pred, err = p.Predict(req.Features)
	}
	if err != nil {
		s.predictionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prediction": pred, "model": rec.Name})
}

func (s *Server) handlePredictGame(c *gin.Context) {
	var g data.GameLog
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, p := s.current()
	if rec == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	v, names := features.Vectorize(g)
	if !slices.Equal(names, rec.FeatureNames) {
		c.JSON(http.StatusConflict, gin.H{"error": "model was not trained on game-log features"})
		return
	}
	pred, err := p.Predict(v)
	if err != nil {
		s.predictionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"player_id":  g.PlayerID,
		"game_id":    g.GameID,
		"prediction": pred,
		"model":      rec.Name,
	})
}

func (s *Server) handleBatch(c *gin.Context) {
	var req batchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, p := s.current()
	if rec == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	var (
		preds []float64
		err   error
	)
	if req.Standardized {
		preds, err = p.Forest.PredictBatch(req.Rows)
	} else {
		preds, err = p.PredictBatch(req.Rows)
	}
	if err != nil {
		s.predictionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": preds, "model": rec.Name})
}

func (s *Server) handleReload(c *gin.Context) {
	err := s.Reload(c.Request.Context())
	switch {
	case err == nil:
		rec, _ := s.current()
		c.JSON(http.StatusOK, gin.H{"name": rec.Name, "createdAt": rec.CreatedAt})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.logger.Error("reload failed", zap.String("name", s.modelName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
	}
}

func (s *Server) predictionError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.logger.Error("prediction failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
}
