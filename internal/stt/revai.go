package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const revaiDefaultBaseURL = "https://api.rev.ai"

// RevAI is the submit-then-poll adapter: audio is submitted inline as a
// multipart job, the job is polled until transcribed or failed, and the
// finished transcript is fetched as plain text.
type RevAI struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	clock        Clock
	pollInterval time.Duration
	pollDeadline time.Duration
}

type RevAIConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	Clock        Clock
	PollInterval time.Duration
	PollDeadline time.Duration
}

func NewRevAI(cfg RevAIConfig) *RevAI {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = revaiDefaultBaseURL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	interval := cfg.PollInterval
	if interval == 0 {
		interval = 5 * time.Second
	}
	deadline := cfg.PollDeadline
	if deadline == 0 {
		deadline = 180 * time.Second
	}

	return &RevAI{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		clock:        clock,
		pollInterval: interval,
		pollDeadline: deadline,
	}
}

type revaiJobResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FailureDetail string `json:"failure_detail"`
}

func (r *RevAI) Transcribe(ctx context.Context, req Request) (*Result, error) {
	jobID, err := r.submit(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := r.poll(ctx, jobID); err != nil {
		return nil, err
	}

	return r.fetchTranscript(ctx, jobID)
}

func (r *RevAI) submit(ctx context.Context, req Request) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("media", "clip."+extensionForMime(req.MimeType))
	if err != nil {
		return "", wrapError(KindProviderError, fmt.Errorf("build multipart body: %w", err))
	}
	if _, err := part.Write(req.Audio); err != nil {
		return "", wrapError(KindProviderError, fmt.Errorf("write media part: %w", err))
	}
	if err := writer.Close(); err != nil {
		return "", wrapError(KindProviderError, fmt.Errorf("close multipart body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/speechtotext/v1/jobs", &body)
	if err != nil {
		return "", wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", classifyStatus(resp.StatusCode, ProviderRevAI)
	}

	var decoded revaiJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", wrapError(KindProviderError, fmt.Errorf("decode job response: %w", err))
	}
	if decoded.ID == "" {
		return "", newError(KindProviderError, "job response missing id")
	}
	return decoded.ID, nil
}

func (r *RevAI) poll(ctx context.Context, jobID string) error {
	deadline := r.clock.Now().Add(r.pollDeadline)

	for {
		job, err := r.pollOnce(ctx, jobID)
		if err != nil {
			return err
		}

		switch job.Status {
		case "transcribed":
			return nil
		case "failed":
			return newError(KindProviderError, "revai job failed: "+job.FailureDetail)
		}

		if !r.clock.Now().Add(r.pollInterval).Before(deadline) {
			return newError(KindTimeout, "revai job "+jobID+" did not complete before deadline")
		}
		if err := r.clock.Sleep(ctx, r.pollInterval); err != nil {
			return wrapError(KindTimeout, err)
		}
	}
}

func (r *RevAI) pollOnce(ctx context.Context, jobID string) (*revaiJobResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/speechtotext/v1/jobs/"+jobID, nil)
	if err != nil {
		return nil, wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, ProviderRevAI)
	}

	var decoded revaiJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("decode job status: %w", err))
	}
	return &decoded, nil
}

func (r *RevAI) fetchTranscript(ctx context.Context, jobID string) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/speechtotext/v1/jobs/"+jobID+"/transcript", nil)
	if err != nil {
		return nil, wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	httpReq.Header.Set("Accept", "text/plain")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, ProviderRevAI)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	transcript := strings.TrimSpace(string(raw))
	if transcript == "" {
		return nil, newError(KindEmptyTranscript, "revai job transcribed with no usable text")
	}

	return &Result{Provider: ProviderRevAI, Transcript: transcript}, nil
}
