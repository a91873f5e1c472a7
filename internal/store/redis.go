package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"balotera-backend/internal/config"
	"balotera-backend/internal/models"
)

const (
	keyDocument  = "balotera:document"
	keyRevision  = "balotera:revision"
	keyChangelog = "balotera:changelog"

	changelogCap = 500
)

// RedisStore keeps the whole document as one JSON value, with a revision
// counter alongside it for conditional writes.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.Get(ctx, keyDocument).Bytes()
	if err == redis.Nil {
		if err := s.seed(ctx); err != nil {
			return nil, err
		}
		data, err = s.client.Get(ctx, keyDocument).Bytes()
		if err != nil {
			return nil, fmt.Errorf("failed to load document: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	rev, err := s.client.Get(ctx, keyRevision).Int64()
	if err == redis.Nil {
		rev = 0
	} else if err != nil {
		return nil, fmt.Errorf("failed to load revision: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return &Snapshot{Rev: rev, Doc: &doc}, nil
}

func (s *RedisStore) Save(ctx context.Context, snap *Snapshot, message string) error {
	if snap.Rev == ReadOnlyRev {
		return ErrReadOnly
	}

	data, err := json.Marshal(snap.Doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	entry, _ := json.Marshal(map[string]string{
		"at":      time.Now().UTC().Format(time.RFC3339),
		"message": message,
	})

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, keyRevision).Int64()
		if err == redis.Nil {
			cur = 0
		} else if err != nil {
			return err
		}
		if cur != snap.Rev {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyDocument, data, 0)
			pipe.Set(ctx, keyRevision, cur+1, 0)
			pipe.LPush(ctx, keyChangelog, entry)
			pipe.LTrim(ctx, keyChangelog, 0, changelogCap-1)
			return nil
		})
		return err
	}, keyRevision)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	if err != nil {
		return err
	}

	snap.Rev++
	return nil
}

// Changelog returns the newest audit entries, most recent first.
func (s *RedisStore) Changelog(ctx context.Context, limit int64) ([]string, error) {
	if limit <= 0 || limit > changelogCap {
		limit = 50
	}
	return s.client.LRange(ctx, keyChangelog, 0, limit-1).Result()
}

// seed writes the initial document if none exists yet: registration open,
// one admin account.
func (s *RedisStore) seed(ctx context.Context) error {
	admin := models.NewAccount("admin", "admin123", "CO")
	admin.Role = models.RoleAdmin
	admin.Balance = 0
	admin.LastCreditNotice = nil

	doc := &models.Document{
		AllowRegister: true,
		Users:         []*models.Account{admin},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	set, err := s.client.SetNX(ctx, keyDocument, data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to seed document: %w", err)
	}
	if set {
		s.client.SetNX(ctx, keyRevision, 0, 0)
	}
	return nil
}
