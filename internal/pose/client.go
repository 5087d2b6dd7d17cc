// Package pose is the HTTP client for the external keypoint detection service.
// The service runs the pose model (YOLO-class) out of process; this client only
// ships frames over and maps the response onto gaze types.
package pose

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/config"
	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/gaze"
)

// Client implements gaze.KeypointSource against a remote detector.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a detector client from configuration.
func NewClient(cfg config.PoseConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type detectRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels string `json:"pixels"` // base64 grayscale, row-major
}

type detectResponse struct {
	Subjects []gaze.Subject `json:"subjects"`
}

// Detect sends one frame to the detection service and returns the subjects it
// found, ordered by detection prominence.
func (c *Client) Detect(frame *gaze.Frame) ([]gaze.Subject, error) {
	payload, err := json.Marshal(detectRequest{
		Width:  frame.Width,
		Height: frame.Height,
		Pixels: base64.StdEncoding.EncodeToString(frame.Pixels),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode detect request: %w", err)
	}

	resp, err := c.httpc.Post(c.baseURL+"/detect", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("keypoint service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keypoint service returned status %d", resp.StatusCode)
	}

	var decoded detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode detect response: %w", err)
	}

	return decoded.Subjects, nil
}
