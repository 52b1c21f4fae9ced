package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medportal/portal-api/internal/model"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is the server-side state behind one login. The identity inside it
// is resolved once per request at the middleware boundary and handed to
// workflows explicitly.
type Session struct {
	ID        string         `json:"id"`
	Identity  model.Identity `json:"identity"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store keeps sessions and their one-shot flash messages in Redis, keyed by
// an opaque id carried in a cookie.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	URL string
	TTL time.Duration
}

func NewStore(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client, ttl: cfg.TTL}, nil
}

func sessionKey(id string) string { return "session:" + id }
func flashKey(id string) string   { return "session:" + id + ":flash" }

// Create stores a new session for the identity and returns its id.
func (s *Store) Create(ctx context.Context, identity model.Identity) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Identity:  identity,
		CreatedAt: time.Now(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sess.ID), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Get resolves a session id and slides its expiry forward.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	s.client.Expire(ctx, sessionKey(id), s.ttl)
	return &sess, nil
}

// Destroy removes the session and any pending flash.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id), flashKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// SetFlash stores the one-shot message shown on the next render.
func (s *Store) SetFlash(ctx context.Context, id, message string) error {
	if err := s.client.Set(ctx, flashKey(id), message, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set flash: %w", err)
	}
	return nil
}

// PopFlash returns the pending flash message and clears it in one round
// trip; an empty string means there was none.
func (s *Store) PopFlash(ctx context.Context, id string) (string, error) {
	message, err := s.client.GetDel(ctx, flashKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to pop flash: %w", err)
	}
	return message, nil
}

// Ping reports whether the backing Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
