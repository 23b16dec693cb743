package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ib-77/queueautomator/pkg/qa"
	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

type outputResponse struct {
	RunID string `json:"run_id"`
	Count int    `json:"count"`
	Items []any  `json:"items"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Automator string `json:"automator"`
	Running   bool   `json:"running"`
	RunID     string `json:"run_id,omitempty"`
}

func (s *Server) process(c *gin.Context) {
	data := c.Param("data")

	if !s.pipeline.Running() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": qa.ErrNotRunning.Error()})
		return
	}
	if err := s.pipeline.BindData(automator.Input, []any{data}); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "processing " + data})
}

func (s *Server) output(c *gin.Context) {
	runID := s.pipeline.RunID()
	items, err := s.pipeline.Output()
	if errors.Is(err, qa.ErrNotRunning) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []any{}
	}

	c.JSON(http.StatusOK, outputResponse{
		RunID: runID,
		Count: len(items),
		Items: items,
	})
}

func (s *Server) stages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"automator": s.pipeline.Name(),
		"stages":    s.pipeline.Stages(),
	})
}

func (s *Server) health(c *gin.Context) {
	resp := healthResponse{
		Status:    "ok",
		Automator: s.pipeline.Name(),
		Running:   s.pipeline.Running(),
		RunID:     s.pipeline.RunID(),
	}
	if !resp.Running {
		resp.Status = "degraded"
	}
	c.JSON(http.StatusOK, resp)
}
