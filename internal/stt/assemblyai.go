package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const assemblyaiDefaultBaseURL = "https://api.assemblyai.com"

// AssemblyAI is the upload/submit/poll adapter: audio bytes are uploaded to
// get a reference URL, a transcription job is submitted against that URL,
// and the job is polled until it completes, errors, or the deadline passes.
type AssemblyAI struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	clock        Clock
	pollInterval time.Duration
	pollDeadline time.Duration
}

type AssemblyAIConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	Clock        Clock
	PollInterval time.Duration
	PollDeadline time.Duration
}

func NewAssemblyAI(cfg AssemblyAIConfig) *AssemblyAI {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = assemblyaiDefaultBaseURL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	interval := cfg.PollInterval
	if interval == 0 {
		interval = 3 * time.Second
	}
	deadline := cfg.PollDeadline
	if deadline == 0 {
		deadline = 90 * time.Second
	}

	return &AssemblyAI{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		clock:        clock,
		pollInterval: interval,
		pollDeadline: deadline,
	}
}

type assemblyaiUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type assemblyaiSubmitRequest struct {
	AudioURL string `json:"audio_url"`
}

type assemblyaiTranscriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (a *AssemblyAI) Transcribe(ctx context.Context, req Request) (*Result, error) {
	uploadURL, err := a.upload(ctx, req)
	if err != nil {
		return nil, err
	}

	jobID, err := a.submit(ctx, uploadURL)
	if err != nil {
		return nil, err
	}

	return a.poll(ctx, jobID)
}

func (a *AssemblyAI) upload(ctx context.Context, req Request) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/upload", bytes.NewReader(req.Audio))
	if err != nil {
		return "", wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", a.apiKey)
	httpReq.Header.Set("Content-Type", NormalizeMime(req.MimeType))

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, ProviderAssemblyAI)
	}

	var decoded assemblyaiUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", wrapError(KindProviderError, fmt.Errorf("decode upload response: %w", err))
	}
	if decoded.UploadURL == "" {
		return "", newError(KindProviderError, "upload response missing upload_url")
	}
	return decoded.UploadURL, nil
}

func (a *AssemblyAI) submit(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(assemblyaiSubmitRequest{AudioURL: audioURL})
	if err != nil {
		return "", wrapError(KindProviderError, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", a.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, ProviderAssemblyAI)
	}

	var decoded assemblyaiTranscriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", wrapError(KindProviderError, fmt.Errorf("decode submit response: %w", err))
	}
	if decoded.ID == "" {
		return "", newError(KindProviderError, "submit response missing job id")
	}
	return decoded.ID, nil
}

func (a *AssemblyAI) poll(ctx context.Context, jobID string) (*Result, error) {
	deadline := a.clock.Now().Add(a.pollDeadline)

	for {
		status, err := a.pollOnce(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "completed":
			transcript := strings.TrimSpace(status.Text)
			if transcript == "" {
				return nil, newError(KindEmptyTranscript, "assemblyai job completed with no usable text")
			}
			return &Result{Provider: ProviderAssemblyAI, Transcript: transcript}, nil
		case "error":
			return nil, newError(KindProviderError, "assemblyai job failed: "+status.Error)
		}

		if !a.clock.Now().Add(a.pollInterval).Before(deadline) {
			return nil, newError(KindTimeout, "assemblyai job "+jobID+" did not complete before deadline")
		}
		if err := a.clock.Sleep(ctx, a.pollInterval); err != nil {
			return nil, wrapError(KindTimeout, err)
		}
	}
}

func (a *AssemblyAI) pollOnce(ctx context.Context, jobID string) (*assemblyaiTranscriptResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v2/transcript/"+jobID, nil)
	if err != nil {
		return nil, wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", a.apiKey)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, ProviderAssemblyAI)
	}

	var decoded assemblyaiTranscriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("decode status response: %w", err))
	}
	return &decoded, nil
}
