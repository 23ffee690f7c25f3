package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	openaiDefaultBaseURL = "https://api.openai.com"
	openaiModel          = "whisper-1"
)

// OpenAI is the synchronous adapter: one multipart request, one response.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}

	return &OpenAI{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
	}
}

type openaiTranscriptionResponse struct {
	Text string `json:"text"`
}

func (o *OpenAI) Transcribe(ctx context.Context, req Request) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "clip."+extensionForMime(req.MimeType))
	if err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("build multipart body: %w", err))
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("write audio part: %w", err))
	}
	if err := writer.WriteField("model", openaiModel); err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("write model field: %w", err))
	}
	if err := writer.Close(); err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("close multipart body: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, wrapError(KindProviderError, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, ProviderOpenAI)
	}

	var decoded openaiTranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, wrapError(KindProviderError, fmt.Errorf("decode response: %w", err))
	}

	transcript := strings.TrimSpace(decoded.Text)
	if transcript == "" {
		return nil, newError(KindEmptyTranscript, "openai returned no usable text")
	}

	return &Result{Provider: ProviderOpenAI, Transcript: transcript}, nil
}
