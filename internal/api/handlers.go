package api

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/neuroquant-report-server/internal/domain"
)

// analyzeRequest is the JSON body of a direct analysis call. Volumes carry
// raw segmentation labels; the analyzer resolves them to canonical regions.
type analyzeRequest struct {
	Age     float64                  `json:"age"`
	Sex     string                   `json:"sex"`
	Volumes domain.VolumeObservation `json:"volumes"`
}

func (r analyzeRequest) patient() domain.PatientContext {
	return domain.PatientContext{
		Age: r.Age,
		Sex: domain.Sex(strings.ToLower(r.Sex)),
	}
}

// respondError writes a standardized error response tagged with the request's
// correlation ID.
func (s *Server) respondError(c *gin.Context, status int, code, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	s.log.WithFields(logrus.Fields{
		"correlation_id": c.GetString("correlation_id"),
		"code":           code,
		"status":         status,
		"details":        details,
	}).Warn(message)
	c.AbortWithStatusJSON(status, domain.NewAnalysisError(code, message, details, c.GetString("correlation_id")))
}

// respondAnalysisError maps pipeline errors onto HTTP statuses. Input problems
// are the caller's fault; everything else is ours.
func (s *Server) respondAnalysisError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrMissingVolumes):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeMissingVolumes, "volume observation is missing or empty", err)
	case errors.Is(err, domain.ErrInvalidSex), errors.As(err, &verr):
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid analysis input", err)
	default:
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeInternal, "analysis failed", err)
	}
}

// persist stores a finished report. The analysis already succeeded, so a
// storage failure is logged and the report is still returned to the caller.
func (s *Server) persist(c *gin.Context, report *domain.AnalysisReport) {
	if err := s.store.Save(c.Request.Context(), report); err != nil {
		s.log.WithFields(logrus.Fields{
			"report_id":      report.ID,
			"correlation_id": c.GetString("correlation_id"),
		}).WithError(err).Error("Failed to persist report")
	}
}

// handleAnalyze runs the pipeline on a caller-supplied volume observation.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body", err)
		return
	}

	report, err := s.analyzer.Analyze(req.Volumes, req.patient())
	if err != nil {
		s.respondAnalysisError(c, err)
		return
	}

	s.persist(c, report)
	c.JSON(http.StatusOK, report)
}

// handleAnalyzeScan accepts a conformed volume tensor upload, segments it via
// the inference service and runs the pipeline on the result. The tensor may
// be gzip-compressed.
func (s *Server) handleAnalyzeScan(c *gin.Context) {
	if s.segmenter == nil {
		s.respondError(c, http.StatusServiceUnavailable, domain.ErrCodeSegmentation, "segmentation service is not configured", nil)
		return
	}

	age, err := strconv.ParseFloat(c.PostForm("age"), 64)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "age form field must be a number", err)
		return
	}
	patient := domain.PatientContext{
		Age: age,
		Sex: domain.Sex(strings.ToLower(c.PostForm("sex"))),
	}
	if err := patient.Validate(); err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid patient context", err)
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "file form field with the volume tensor is required", err)
		return
	}
	defer file.Close()

	tensor, err := readTensor(file)
	if err != nil {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "failed to read volume tensor", err)
		return
	}

	volumes, err := s.segmenter.Segment(c.Request.Context(), tensor)
	if err != nil {
		s.respondError(c, http.StatusBadGateway, domain.ErrCodeSegmentation, "segmentation failed", err)
		return
	}

	report, err := s.analyzer.Analyze(volumes, patient)
	if err != nil {
		s.respondAnalysisError(c, err)
		return
	}

	s.persist(c, report)
	c.JSON(http.StatusOK, report)
}

// readTensor reads an uploaded tensor, transparently decompressing gzip.
func readTensor(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}
	return data, nil
}

// handleListReports returns stored report summaries, newest first.
func (s *Server) handleListReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	summaries, err := s.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to list reports", err)
		return
	}
	total, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to count reports", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": summaries,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// handleGetReport returns one stored report by ID.
func (s *Server) handleGetReport(c *gin.Context) {
	report, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.respondError(c, http.StatusNotFound, domain.ErrCodeNotFound, "report not found", err)
			return
		}
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to load report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// handleDeleteReport removes one stored report by ID.
func (s *Server) handleDeleteReport(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeDatabase, "failed to delete report", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// regionInfo is the wire shape of one reference region.
type regionInfo struct {
	Key          string                      `json:"key"`
	ClinicalName string                      `json:"clinical_name"`
	Description  string                      `json:"description,omitempty"`
	Inverted     bool                        `json:"inverted"`
	Significance domain.ClinicalSignificance `json:"clinical_significance"`
}

// handleReferenceRegions lists the regions of the active reference snapshot.
func (s *Server) handleReferenceRegions(c *gin.Context) {
	snapshot := s.analyzer.Snapshot()

	regions := make([]regionInfo, 0, len(snapshot.RegionKeys()))
	for _, key := range snapshot.RegionKeys() {
		rp, ok := snapshot.Region(key)
		if !ok {
			continue
		}
		regions = append(regions, regionInfo{
			Key:          rp.Key,
			ClinicalName: rp.ClinicalName,
			Description:  rp.Description,
			Inverted:     rp.InvertZScore,
			Significance: rp.Significance,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"version": snapshot.Version(),
		"regions": regions,
	})
}
