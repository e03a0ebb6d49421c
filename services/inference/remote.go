package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/scholarhelp/core/profile"
)

// RemoteScorer asks a scoring service for the grade class.
//
// Request:  POST {"features": {"age": 17, ..., "gpa": 3.2}}
// Response: 2xx {"grade_class": 1.2}
type RemoteScorer struct {
	url    string
	client *http.Client
}

type (
	scoreRequest struct {
		Features map[string]float64 `json:"features"`
	}

	scoreResponse struct {
		GradeClass *float64 `json:"grade_class"`
	}
)

func NewRemoteScorer(url string, timeout time.Duration) *RemoteScorer {
	return &RemoteScorer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *RemoteScorer) Predict(ctx context.Context, feats profile.Features) (float64, error) {
	body, err := json.Marshal(scoreRequest{Features: feats.Named()})
	if err != nil {
		return 0, errors.Wrap(err, "encoding score request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, errors.Wrap(err, "building score request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "requesting score")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, errors.Errorf("scoring service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var res scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return 0, errors.Wrap(err, "decoding score response")
	}
	if res.GradeClass == nil {
		return 0, errors.New("score response has no grade_class")
	}
	return *res.GradeClass, nil
}
