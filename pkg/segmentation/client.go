// Package segmentation is the client for the remote brain-MRI inference
// service. The caller supplies a conformed 256^3 uint8 volume tensor; the
// service returns a label tensor of the same shape, which is reduced to
// per-region voxel counts for the analysis pipeline.
package segmentation

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/neuroquant-report-server/internal/domain"
)

// Config configures the inference client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// Client calls the remote segmentation service. Requests are rate limited
// and guarded by a circuit breaker; inference is expensive and a struggling
// backend must not be hammered.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

// tensorResponse is the wire shape of a successful inference call.
type tensorResponse struct {
	Success       bool    `json:"success"`
	Shape         []int   `json:"shape"`
	Dtype         string  `json:"dtype"`
	Encoding      string  `json:"encoding"`
	InferenceTime float64 `json:"inference_time"`
	Data          string  `json:"data"`
}

// NewClient creates a segmentation client.
func NewClient(config Config, logger *logrus.Logger) *Client {
	if config.RateLimit <= 0 {
		config.RateLimit = 1
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "segmentation",
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		breaker: breaker,
		log:     logger,
	}
}

// Segment runs remote inference on a conformed uint8 volume tensor and
// returns the per-region voxel counts.
func (c *Client) Segment(ctx context.Context, tensor []byte) (domain.VolumeObservation, error) {
	if len(tensor) != tensorSize {
		return nil, fmt.Errorf("conformed tensor must be %d bytes, got %d", tensorSize, len(tensor))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.segmentTensor(ctx, tensor)
	})
	if err != nil {
		return nil, err
	}

	labelData := result.([]byte)
	volumes, err := CountVolumes(labelData)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"regions": len(volumes),
	}).Debug("Segmentation complete")
	return volumes, nil
}

// segmentTensor posts the gzipped tensor as a multipart upload and decodes
// the label tensor from the response.
func (c *Client) segmentTensor(ctx context.Context, tensor []byte) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "volume.bin.gz")
	if err != nil {
		return nil, fmt.Errorf("failed to create upload part: %w", err)
	}

	gz := gzip.NewWriter(part)
	if _, err := gz.Write(tensor); err != nil {
		return nil, fmt.Errorf("failed to compress tensor: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/segment/tensor", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("segmentation service returned status %d: %s", resp.StatusCode, msg)
	}

	var decoded tensorResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to parse inference response: %w", err)
	}
	if decoded.Encoding != "base64_gzip" {
		return nil, fmt.Errorf("unsupported response encoding %q", decoded.Encoding)
	}
	if decoded.Dtype != "uint8" {
		return nil, fmt.Errorf("unsupported response dtype %q", decoded.Dtype)
	}

	labelData, err := decodeLabelTensor(decoded.Data)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"round_trip_ms":  time.Since(start).Milliseconds(),
		"inference_time": decoded.InferenceTime,
	}).Debug("Inference round trip complete")
	return labelData, nil
}

// decodeLabelTensor reverses the base64+gzip response encoding.
func decodeLabelTensor(encoded string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode label tensor: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress label tensor: %w", err)
	}
	defer gz.Close()

	labelData, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to read label tensor: %w", err)
	}
	return labelData, nil
}

// Health probes the segmentation service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("segmentation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("segmentation service returned status %d", resp.StatusCode)
	}
	return nil
}
