package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/misty-step/bibliomnomnom-sub004/internal/auth"
	"github.com/misty-step/bibliomnomnom-sub004/internal/dto"
	"github.com/misty-step/bibliomnomnom-sub004/internal/pipeline"
	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
	"github.com/misty-step/bibliomnomnom-sub004/internal/stt"
	"github.com/misty-step/bibliomnomnom-sub004/internal/synthesis"
)

const maxAudioBytes = 25 << 20

// PipelineRunner drives transcription and synthesis for one session;
// satisfied by *pipeline.Runner.
type PipelineRunner interface {
	Run(ctx context.Context, sessionID string, req stt.Request, sctx *synthesis.Context) pipeline.Outcome
}

// ContextBuilder assembles the reading context for synthesis; satisfied
// by *library.ContextBuilder.
type ContextBuilder interface {
	Build(ctx context.Context, userID, bookID string) (*synthesis.Context, error)
}

type Handler struct {
	store    *Store
	audio    *AudioStore
	runner   PipelineRunner
	contexts ContextBuilder
	logger   *slog.Logger
}

func NewHandler(store *Store, audio *AudioStore, runner PipelineRunner, contexts ContextBuilder, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		audio:    audio,
		runner:   runner,
		contexts: contexts,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/audio", h.UploadAudio)
	g.POST("/:id/process", h.Process)
	g.GET("/:id/artifacts", h.Artifacts)
}

// @Summary      Start a reading session
// @Description  Creates a session in the recording stage
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        request  body      dto.CreateSessionRequest  true  "Session details"
// @Success      201      {object}  dto.SessionResponse
// @Failure      400      {object}  shared.APIError
// @Failure      401      {object}  shared.APIError
// @Security     BearerAuth
// @Router       /sessions [post]
func (h *Handler) Create(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	sess := &ReadingSession{
		UserID: userID,
		BookID: req.BookID,
	}
	if err := h.store.Create(c.Request().Context(), sess); err != nil {
		h.logger.Error("failed to create session", "error", err, "user_id", userID)
		return shared.InternalError("create_failed", "failed to create session")
	}

	return c.JSON(http.StatusCreated, sessionResponse(sess, nil))
}

// @Summary      List sessions
// @Tags         sessions
// @Produce      json
// @Param        limit   query     int  false  "Maximum sessions to return"
// @Param        offset  query     int  false  "Offset into the result set"
// @Success      200     {object}  dto.SessionListResponse
// @Failure      401     {object}  shared.APIError
// @Security     BearerAuth
// @Router       /sessions [get]
func (h *Handler) List(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	limit, offset := 50, 0
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}

	sessions, err := h.store.ListByUser(c.Request().Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list sessions", "error", err, "user_id", userID)
		return shared.InternalError("list_failed", "failed to list sessions")
	}

	resp := dto.SessionListResponse{Sessions: make([]dto.SessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sessionResponse(sess, nil))
	}
	return c.JSON(http.StatusOK, resp)
}

// @Summary      Get a session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Security     BearerAuth
// @Router       /sessions/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	sess, err := h.store.GetByID(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("session_not_found", "session not found")
		}
		return shared.InternalError("get_failed", "failed to get session")
	}

	return c.JSON(http.StatusOK, sessionResponse(sess, nil))
}

// @Summary      Upload session audio
// @Description  Attaches the recorded clip and moves the session to the uploading stage
// @Tags         sessions
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Session ID"
// @Param        audio  formData  file    true  "Audio clip"
// @Success      200    {object}  dto.SessionResponse
// @Failure      400    {object}  shared.APIError
// @Failure      401    {object}  shared.APIError
// @Failure      404    {object}  shared.APIError
// @Failure      409    {object}  shared.APIError
// @Security     BearerAuth
// @Router       /sessions/{id}/audio [post]
func (h *Handler) UploadAudio(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	sess, err := h.store.GetByID(ctx, userID, c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("session_not_found", "session not found")
		}
		return shared.InternalError("get_failed", "failed to get session")
	}
	if sess.Stage != pipeline.StageRecording {
		return shared.Conflict("invalid_stage", "session is not in the recording stage")
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return shared.BadRequest("missing_audio", "audio file is required")
	}
	if file.Size > maxAudioBytes {
		return shared.BadRequest("audio_too_large", "audio clip exceeds the size limit")
	}

	src, err := file.Open()
	if err != nil {
		return shared.BadRequest("invalid_audio", "failed to read audio file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxAudioBytes+1))
	if err != nil {
		return shared.BadRequest("invalid_audio", "failed to read audio file")
	}
	if len(data) == 0 {
		return shared.BadRequest("empty_audio", "audio clip is empty")
	}
	if len(data) > maxAudioBytes {
		return shared.BadRequest("audio_too_large", "audio clip exceeds the size limit")
	}

	mimeType := stt.NormalizeMime(file.Header.Get("Content-Type"))
	if err := h.audio.Put(ctx, sess.ID, data, mimeType); err != nil {
		h.logger.Error("failed to stage audio", "error", err, "session_id", sess.ID)
		return shared.InternalError("upload_failed", "failed to store audio")
	}

	sess, err = h.store.AdvanceStage(ctx, userID, sess.ID, pipeline.StageUploading)
	if err != nil {
		return shared.Conflict("invalid_stage", "session stage changed during upload")
	}

	return c.JSON(http.StatusOK, sessionResponse(sess, nil))
}

// @Summary      Process a session
// @Description  Transcribes the staged clip and synthesizes artifacts
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.SessionResponse
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Failure      409  {object}  shared.APIError
// @Security     BearerAuth
// @Router       /sessions/{id}/process [post]
func (h *Handler) Process(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	sess, err := h.store.GetByID(ctx, userID, c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("session_not_found", "session not found")
		}
		return shared.InternalError("get_failed", "failed to get session")
	}
	if sess.Stage != pipeline.StageUploading {
		return shared.Conflict("invalid_stage", "session has no staged audio to process")
	}

	data, mimeType, err := h.audio.Get(ctx, sess.ID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.Conflict("audio_expired", "staged audio has expired, upload again")
		}
		h.logger.Error("failed to load staged audio", "error", err, "session_id", sess.ID)
		return shared.InternalError("process_failed", "failed to load staged audio")
	}

	sctx, err := h.contexts.Build(ctx, userID, sess.BookID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("book_not_found", "session book not found")
		}
		h.logger.Error("failed to build reading context", "error", err, "session_id", sess.ID)
		return shared.InternalError("process_failed", "failed to build reading context")
	}

	if sess, err = h.store.AdvanceStage(ctx, userID, sess.ID, pipeline.StageTranscribing); err != nil {
		return shared.Conflict("invalid_stage", "session is already being processed")
	}

	outcome := h.runner.Run(ctx, sess.ID, stt.Request{Audio: data, MimeType: mimeType}, sctx)

	if sess, err = h.store.AdvanceStage(ctx, userID, sess.ID, pipeline.StageSynthesizing); err != nil {
		return shared.InternalError("process_failed", "failed to advance session")
	}

	if err := h.store.RecordOutcome(ctx, sess.ID, outcome); err != nil {
		h.logger.Error("failed to record outcome", "error", err, "session_id", sess.ID)
		return shared.InternalError("process_failed", "failed to record results")
	}
	if err := h.store.AppendArtifacts(ctx, sess.ID, outcome.Artifacts); err != nil {
		h.logger.Error("failed to store artifacts", "error", err, "session_id", sess.ID)
		return shared.InternalError("process_failed", "failed to store artifacts")
	}

	if sess, err = h.store.AdvanceStage(ctx, userID, sess.ID, pipeline.StageCompleting); err != nil {
		return shared.InternalError("process_failed", "failed to advance session")
	}

	if err := h.audio.Delete(ctx, sess.ID); err != nil {
		h.logger.Warn("failed to delete staged audio", "error", err, "session_id", sess.ID)
	}

	sess, err = h.store.GetByID(ctx, userID, sess.ID)
	if err != nil {
		return shared.InternalError("process_failed", "failed to reload session")
	}

	artifacts := make([]dto.ArtifactResponse, 0, len(outcome.Artifacts))
	for _, a := range outcome.Artifacts {
		artifacts = append(artifacts, dto.ArtifactResponse{
			Kind:    string(a.Kind),
			Title:   a.Title,
			Content: a.Content,
		})
	}
	return c.JSON(http.StatusOK, sessionResponse(sess, artifacts))
}

// @Summary      List session artifacts
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  dto.ArtifactListResponse
// @Failure      401  {object}  shared.APIError
// @Failure      404  {object}  shared.APIError
// @Security     BearerAuth
// @Router       /sessions/{id}/artifacts [get]
func (h *Handler) Artifacts(c echo.Context) error {
	userID, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	artifacts, err := h.store.ArtifactsBySession(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NotFound("session_not_found", "session not found")
		}
		return shared.InternalError("list_failed", "failed to list artifacts")
	}

	resp := dto.ArtifactListResponse{Artifacts: make([]dto.ArtifactResponse, 0, len(artifacts))}
	for _, a := range artifacts {
		resp.Artifacts = append(resp.Artifacts, dto.ArtifactResponse{
			ID:      a.ID,
			Kind:    a.Kind,
			Title:   a.Title,
			Content: a.Content,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func sessionResponse(sess *ReadingSession, artifacts []dto.ArtifactResponse) dto.SessionResponse {
	return dto.SessionResponse{
		ID:           sess.ID,
		BookID:       sess.BookID,
		Stage:        string(sess.Stage),
		Provider:     sess.Provider,
		Transcript:   sess.Transcript,
		UsedFallback: sess.UsedFallback,
		ErrorKind:    sess.ErrorKind,
		Artifacts:    artifacts,
		CreatedAt:    sess.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    sess.UpdatedAt.Format(time.RFC3339),
	}
}
