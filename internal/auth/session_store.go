package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "admin_session||"
	tokensSetKey     = "admin_sessions"
)

// Session is the marker stored per login token. It is valid while Expiry (epoch ms) is in the future.
type Session struct {
	Authenticated bool  `json:"authenticated"`
	Expiry        int64 `json:"expiry"`
}

func (s Session) ValidAt(now time.Time) bool {
	return s.Authenticated && s.Expiry > now.UnixMilli()
}

type SessionStore interface {
	Put(ctx context.Context, token string, session Session, ttl time.Duration) error
	// Get returns ErrSessionNotFound for unknown tokens.
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	Tokens(ctx context.Context) ([]string, error)
}

var _ SessionStore = (*RedisSessionStore)(nil)
var _ SessionStore = (*MemorySessionStore)(nil)

type RedisSessionStore struct {
	redisClient *redis.Client
}

func NewRedisSessionStore(redisClient *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		redisClient: redisClient,
	}
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, session Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, string(payload), ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	// index the token, so ScanAndClean can find markers redis did not expire yet
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return fmt.Errorf("index session: %w", err)
	}

	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := s.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return fmt.Errorf("unindex session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Tokens(ctx context.Context) ([]string, error) {
	tokens, err := s.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return tokens, nil
}

// MemorySessionStore keeps sessions in process. The ttl is ignored, expiry is
// enforced by the session manager from the stored marker.
type MemorySessionStore struct {
	mutex    sync.Mutex
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]Session),
	}
}

func (s *MemorySessionStore) Put(_ context.Context, token string, session Session, _ time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.sessions[token] = session
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (*Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemorySessionStore) Tokens(_ context.Context) ([]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	tokens := make([]string, 0, len(s.sessions))
	for token := range s.sessions {
		tokens = append(tokens, token)
	}
	return tokens, nil
}
