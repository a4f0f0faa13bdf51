package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/neuroquant-report-server/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is handled by the CORS middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is one frame of the analysis progress stream. Type is
// "stage", "report" or "error"; exactly one payload field is set.
type streamMessage struct {
	Type   string                 `json:"type"`
	Stage  string                 `json:"stage,omitempty"`
	Report *domain.AnalysisReport `json:"report,omitempty"`
	Error  *domain.AnalysisError  `json:"error,omitempty"`
}

// handleAnalyzeStream upgrades to a websocket, reads one analysis request and
// streams a stage frame per completed pipeline stage followed by the final
// report. The pipeline is fast; the stream exists so interactive clients can
// show progress without polling.
func (s *Server) handleAnalyzeStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}
	defer conn.Close()

	correlationID := c.GetString("correlation_id")

	var req analyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(streamMessage{
			Type:  "error",
			Error: domain.NewAnalysisError(domain.ErrCodeInvalidInput, "invalid analysis request", err.Error(), correlationID),
		})
		return
	}

	report, err := s.analyzer.AnalyzeWithProgress(req.Volumes, req.patient(), func(stage string) {
		conn.WriteJSON(streamMessage{Type: "stage", Stage: stage})
	})
	if err != nil {
		code := domain.ErrCodeInvalidInput
		if errors.Is(err, domain.ErrMissingVolumes) {
			code = domain.ErrCodeMissingVolumes
		}
		conn.WriteJSON(streamMessage{
			Type:  "error",
			Error: domain.NewAnalysisError(code, "analysis failed", err.Error(), correlationID),
		})
		return
	}

	s.persist(c, report)

	if err := conn.WriteJSON(streamMessage{Type: "report", Report: report}); err != nil {
		s.log.WithError(err).Warn("Failed to deliver streamed report")
		return
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
