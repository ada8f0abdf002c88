package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/agenthands/flowalign/internal/core"
	"github.com/agenthands/flowalign/internal/core/model"
	"github.com/agenthands/flowalign/internal/logger"
)

type Server struct {
	Engine *core.Engine
	Log    *logger.Logger
}

func NewServer(engine *core.Engine, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		Engine: engine,
		Log:    log.With("component", "HTTPServer"),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("flowalign"))
	r.Use(RequestLogger(s.Log))

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/collections/:collectionId/transcripts", s.AddTranscript)
	r.GET("/collections/:collectionId/canonical", s.GetCanonical)
	r.POST("/collections/:collectionId/canonical/rebuild", s.RebuildCanonical)
	r.GET("/collections/:collectionId/phases", s.GetPhases)

	r.PUT("/projects/:projectId/prompt-nodes", s.PutPromptNodes)
	r.POST("/projects/:projectId/collections/:collectionId/alignment", s.RunAlignment)
	r.GET("/projects/:projectId/collections/:collectionId/alignment", s.GetAlignments)

	return r
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	if errors.Is(err, core.ErrInvalidArgument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Log.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type AddTranscriptRequest struct {
	TranscriptID string `json:"transcript_id" binding:"required"`
	FlowID       string `json:"flow_id"`
	Nodes        []any  `json:"nodes"`
	Connections  []any  `json:"connections"`
}

func (s *Server) AddTranscript(c *gin.Context) {
	var req AddTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	flow, err := s.Engine.AddTranscriptFlow(c.Request.Context(), c.Param("collectionId"), model.TranscriptFlow{
		ID:           req.FlowID,
		TranscriptID: req.TranscriptID,
		Nodes:        req.Nodes,
		Connections:  req.Connections,
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"collection_id": c.Param("collectionId"),
		"transcript_id": flow.TranscriptID,
		"flow_id":       flow.ID,
	})
}

type PromptNodeInput struct {
	ID       string `json:"id" binding:"required"`
	Type     string `json:"type"`
	Label    string `json:"label" binding:"required"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type PutPromptNodesRequest struct {
	Nodes []PromptNodeInput `json:"nodes" binding:"required,dive"`
}

func (s *Server) PutPromptNodes(c *gin.Context) {
	var req PutPromptNodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	nodes := make([]model.PromptNode, len(req.Nodes))
	for i, n := range req.Nodes {
		nodes[i] = model.PromptNode{
			ID:       n.ID,
			Type:     n.Type,
			Label:    n.Label,
			Content:  n.Content,
			Position: n.Position,
		}
	}

	projectID := c.Param("projectId")
	if err := s.Engine.PutPromptNodes(c.Request.Context(), projectID, nodes); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": projectID, "count": len(nodes)})
}

func (s *Server) RunAlignment(c *gin.Context) {
	persist := true
	if raw := c.Query("persist"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "persist must be true or false"})
			return
		}
		persist = v
	}

	report, err := s.Engine.RunAlignment(c.Request.Context(), c.Param("projectId"), c.Param("collectionId"), persist)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetAlignments(c *gin.Context) {
	rows, err := s.Engine.Alignments(c.Request.Context(), c.Param("projectId"), c.Param("collectionId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if rows == nil {
		rows = []model.PromptFlowAlignment{}
	}
	c.JSON(http.StatusOK, gin.H{"alignments": rows})
}

func (s *Server) GetCanonical(c *gin.Context) {
	graph, err := s.Engine.CanonicalGraph(c.Request.Context(), c.Param("collectionId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

func (s *Server) RebuildCanonical(c *gin.Context) {
	graph, err := s.Engine.RebuildCanonical(c.Request.Context(), c.Param("collectionId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

func (s *Server) GetPhases(c *gin.Context) {
	phases, err := s.Engine.Phases(c.Request.Context(), c.Param("collectionId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"phases": phases})
}
