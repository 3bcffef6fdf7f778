package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTP queries a fill-mask inference endpoint, e.g. a hosted
// distilbert-base-cased model.
//
// Request:  {"inputs": "We [MASK] ensure ...", "parameters": {"top_k": 25}}
// Response: [{"token_str": "must", "score": 0.41}, ...]
type HTTP struct {
	URL string
	// ModelMask replaces MaskToken before the text is sent. Defaults to "[MASK]".
	ModelMask string
	Client    *http.Client
	Header    http.Header
}

// NewHTTP returns an HTTP oracle with a client that gives up after timeout.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTP{
		URL:       url,
		ModelMask: "[MASK]",
		Client:    &http.Client{Timeout: timeout},
		Header:    http.Header{},
	}
}

type fillMaskRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters fillMaskParams `json:"parameters"`
}

type fillMaskParams struct {
	TopK int `json:"top_k"`
}

type fillMaskPrediction struct {
	TokenStr string  `json:"token_str"`
	Score    float64 `json:"score"`
}

// Predict implements Oracle.
func (h *HTTP) Predict(ctx context.Context, sequence []string, position, topK int) ([]string, error) {
	if position < 0 || position >= len(sequence) {
		return nil, fmt.Errorf("mask position %d out of range for %d tokens", position, len(sequence))
	}
	mask := h.ModelMask
	if mask == "" {
		mask = "[MASK]"
	}
	words := make([]string, len(sequence))
	copy(words, sequence)
	words[position] = mask

	body, err := json.Marshal(fillMaskRequest{
		Inputs:     strings.Join(words, " "),
		Parameters: fillMaskParams{TopK: topK},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, vs := range h.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
		}
		return nil, fmt.Errorf("fill-mask request rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var preds []fillMaskPrediction
	if err := json.NewDecoder(resp.Body).Decode(&preds); err != nil {
		return nil, fmt.Errorf("decode fill-mask response: %w", err)
	}
	out := make([]string, 0, len(preds))
	for _, p := range preds {
		if s := strings.TrimSpace(p.TokenStr); s != "" {
			out = append(out, s)
		}
	}
	return truncate(out, topK), nil
}
