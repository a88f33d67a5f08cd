package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/QuivrHQ/Judge/eval"
)

func (s *Server) handleDataset(c *gin.Context) {
	data := s.judge.Data()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"questions": len(data.Questions),
			"chunks":    len(data.Chunks),
		},
	})
}

func (s *Server) handleQuestions(c *gin.Context) {
	questions := s.judge.Questions()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    questions,
		"count":   len(questions),
	})
}

func (s *Server) handleChunk(c *gin.Context) {
	id := c.Param("id")

	text, ok := s.judge.Chunk(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "chunk not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"id": id, "text": text},
	})
}

func (s *Server) handleEvaluate(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	submitted, err := eval.DecodeResultFormat(body)
	if err != nil {
		badRequest(c, err)
		return
	}

	report, err := s.judge.EvaluateDetailed(submitted)
	if err != nil {
		badRequest(c, err)
		return
	}

	run := eval.NewRun(c.DefaultQuery("name", "submission"))
	run.Exact = &report.ExactResult

	resp := gin.H{
		"success": true,
		"run_id":  run.ID,
		"name":    run.Name,
		"result":  report.ExactResult,
	}
	if c.Query("detailed") == "true" {
		resp["report"] = report
	}
	c.JSON(http.StatusOK, resp)
}

type fuzzyRequest struct {
	Responses  json.RawMessage `json:"responses"`
	References json.RawMessage `json:"references"`
}

func (s *Server) handleEvaluateFuzzy(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}

	var req fuzzyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		badRequest(c, err)
		return
	}
	responses, err := eval.DecodeResponses(req.Responses)
	if err != nil {
		badRequest(c, err)
		return
	}
	references, err := eval.DecodeReferenceRecords(req.References)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := s.judge.EvaluateFuzzy(c.Request.Context(), responses, references)
	if errors.Is(err, eval.ErrMisaligned) {
		badRequest(c, err)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	run := eval.NewRun(c.DefaultQuery("name", "submission"))
	run.Fuzzy = result
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"run_id":  run.ID,
		"name":    run.Name,
		"result":  result,
	})
}

// readBody reads at most maxBodyBytes, writing the error response itself on failure.
func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return nil, false
	}
	return body, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}
