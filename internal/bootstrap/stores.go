package bootstrap

import (
	"github.com/misty-step/bibliomnomnom-sub004/internal/library"
	"github.com/misty-step/bibliomnomnom-sub004/internal/session"
	"github.com/misty-step/bibliomnomnom-sub004/internal/user"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideUserStore(db *gorm.DB) *user.Store {
	return user.NewStore(db)
}

func ProvideLibraryStore(db *gorm.DB, qdrantClient *qdrant.Client) *library.Store {
	return library.NewStore(db, qdrantClient)
}

func ProvideSessionStore(db *gorm.DB) *session.Store {
	return session.NewStore(db)
}

func ProvideAudioStore(redisClient *redis.Client, cfg *Config) *session.AudioStore {
	return session.NewAudioStore(redisClient, cfg.AudioTTL)
}

func RunMigrations(userStore *user.Store, libraryStore *library.Store, sessionStore *session.Store) error {
	if err := userStore.Migrate(); err != nil {
		return err
	}
	if err := libraryStore.Migrate(); err != nil {
		return err
	}
	return sessionStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideUserStore,
		ProvideLibraryStore,
		ProvideSessionStore,
		ProvideAudioStore,
	),
	fx.Invoke(RunMigrations),
)
