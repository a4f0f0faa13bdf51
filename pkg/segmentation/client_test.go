package segmentation

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// makeLabelTensor builds a full-size label tensor whose first len(classes)
// voxels carry the given class values and the rest are background.
func makeLabelTensor(classes ...byte) []byte {
	tensor := make([]byte, tensorSize)
	copy(tensor, classes)
	return tensor
}

// encodeResponse compresses and encodes a label tensor the way the service
// does.
func encodeResponse(t *testing.T, labelData []byte) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(labelData)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		RateLimit: 1000,
		Burst:     1000,
	}, testLogger())
}

func TestCountVolumes(t *testing.T) {
	t.Run("counts voxels per region and drops background", func(t *testing.T) {
		tensor := makeLabelTensor(14, 14, 14, 2, 2, 0, 0, 0)

		volumes, err := CountVolumes(tensor)
		require.NoError(t, err)
		assert.Equal(t, int64(3), volumes["Hippocampus"])
		assert.Equal(t, int64(2), volumes["Cerebral-Cortex"])
		assert.NotContains(t, volumes, "Unknown")
	})

	t.Run("rejects wrong tensor size", func(t *testing.T) {
		_, err := CountVolumes(make([]byte, 100))
		assert.Error(t, err)
	})

	t.Run("rejects unknown class values", func(t *testing.T) {
		_, err := CountVolumes(makeLabelTensor(200))
		assert.Error(t, err)
	})
}

func TestClientSegment(t *testing.T) {
	labelData := makeLabelTensor(14, 14, 15, 1, 1, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/segment/tensor", r.URL.Path)

		// The upload must be a gzipped tensor of the conformed size.
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		gz, err := gzip.NewReader(file)
		require.NoError(t, err)
		raw, err := io.ReadAll(gz)
		require.NoError(t, err)
		require.Len(t, raw, tensorSize)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"shape":          []int{tensorDim, tensorDim, tensorDim},
			"dtype":          "uint8",
			"encoding":       "base64_gzip",
			"inference_time": 1.5,
			"data":           encodeResponse(t, labelData),
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	volumes, err := client.Segment(context.Background(), make([]byte, tensorSize))
	require.NoError(t, err)
	assert.Equal(t, int64(2), volumes["Hippocampus"])
	assert.Equal(t, int64(1), volumes["Amygdala"])
	assert.Equal(t, int64(3), volumes["Cerebral-White-Matter"])
}

func TestClientSegmentErrors(t *testing.T) {
	t.Run("wrong tensor size rejected before upload", func(t *testing.T) {
		client := newTestClient("http://unused.invalid")
		_, err := client.Segment(context.Background(), []byte{1, 2, 3})
		assert.ErrorContains(t, err, "conformed tensor")
	})

	t.Run("server error surfaces with status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Segment(context.Background(), make([]byte, tensorSize))
		assert.ErrorContains(t, err, "status 500")
	})

	t.Run("unsupported encoding rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":  true,
				"dtype":    "uint8",
				"encoding": "raw",
				"data":     "",
			})
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).Segment(context.Background(), make([]byte, tensorSize))
		assert.ErrorContains(t, err, "unsupported response encoding")
	})
}

func TestClientCircuitBreaker(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.Segment(ctx, make([]byte, tensorSize))
		require.Error(t, err)
	}

	// The breaker opens after the failure threshold; later calls fail fast
	// without reaching the backend.
	assert.Less(t, calls, 5)
}

func TestClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, newTestClient(server.URL).Health(context.Background()))
}
