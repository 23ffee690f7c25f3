package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/misty-step/bibliomnomnom-sub004/internal/shared"
	"github.com/redis/go-redis/v9"
)

func setupTestAudioStore(t *testing.T) (*AudioStore, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return NewAudioStore(redisClient, 30*time.Minute), mr
}

func TestAudioStore_PutAndGet(t *testing.T) {
	store, _ := setupTestAudioStore(t)
	ctx := context.Background()

	clip := []byte{0x1a, 0x45, 0xdf, 0xa3}
	if err := store.Put(ctx, "sess_1", clip, "audio/webm"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	data, mimeType, err := store.Get(ctx, "sess_1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(data, clip) {
		t.Errorf("data = %v, want %v", data, clip)
	}
	if mimeType != "audio/webm" {
		t.Errorf("mimeType = %q, want audio/webm", mimeType)
	}
}

func TestAudioStore_Get_Missing(t *testing.T) {
	store, _ := setupTestAudioStore(t)

	if _, _, err := store.Get(context.Background(), "sess_missing"); err != shared.ErrNotFound {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestAudioStore_Expiry(t *testing.T) {
	store, mr := setupTestAudioStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "sess_1", []byte("clip"), "audio/wav"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	mr.FastForward(31 * time.Minute)

	if _, _, err := store.Get(ctx, "sess_1"); err != shared.ErrNotFound {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestAudioStore_Delete(t *testing.T) {
	store, _ := setupTestAudioStore(t)
	ctx := context.Background()

	store.Put(ctx, "sess_1", []byte("clip"), "audio/wav")
	if err := store.Delete(ctx, "sess_1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := store.Get(ctx, "sess_1"); err != shared.ErrNotFound {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}
