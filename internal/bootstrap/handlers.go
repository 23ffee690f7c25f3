package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/misty-step/bibliomnomnom-sub004/internal/auth"
	"github.com/misty-step/bibliomnomnom-sub004/internal/library"
	"github.com/misty-step/bibliomnomnom-sub004/internal/pipeline"
	"github.com/misty-step/bibliomnomnom-sub004/internal/session"
	"github.com/misty-step/bibliomnomnom-sub004/internal/user"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

type noopEmbeddingService struct{}

func (n *noopEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}

func ProvideEmbeddingService() library.EmbeddingService {
	return &noopEmbeddingService{}
}

type HandlerParams struct {
	fx.In

	UserHandler    *user.Handler
	LibraryHandler *library.Handler
	SessionHandler *session.Handler
	JWTMiddleware  *auth.Middleware
	Config         *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(params.JWTMiddleware.Authenticate)
	params.UserHandler.RegisterRoutes(authGroup)

	libraryGroup := api.Group("/library")
	libraryGroup.Use(params.JWTMiddleware.Authenticate)
	params.LibraryHandler.RegisterRoutes(libraryGroup)

	sessionsGroup := api.Group("/sessions")
	sessionsGroup.Use(params.JWTMiddleware.Authenticate)
	params.SessionHandler.RegisterRoutes(sessionsGroup)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideJWTValidator(cfg *Config) *auth.JWTValidator {
	return auth.NewJWTValidator(cfg.HMACKey)
}

func ProvideJWTMiddleware(validator *auth.JWTValidator, userStore *user.Store) *auth.Middleware {
	return auth.NewMiddleware(validator, userStore)
}

func ProvideUserHandler(store *user.Store, logger *slog.Logger) *user.Handler {
	return user.NewHandler(store, logger.With("handler", "user"))
}

func ProvideLibraryHandler(store *library.Store, embeddings library.EmbeddingService, logger *slog.Logger) *library.Handler {
	return library.NewHandler(store, embeddings, logger.With("handler", "library"))
}

func ProvideSessionHandler(
	store *session.Store,
	audio *session.AudioStore,
	runner *pipeline.Runner,
	contexts *library.ContextBuilder,
	logger *slog.Logger,
) *session.Handler {
	return session.NewHandler(store, audio, runner, contexts, logger.With("handler", "session"))
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideJWTValidator,
		ProvideJWTMiddleware,
		ProvideEmbeddingService,
		ProvideUserHandler,
		ProvideLibraryHandler,
		ProvideSessionHandler,
	),
	fx.Invoke(RegisterRoutes),
)
