package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

const credentialsKey = "admin_credentials"

// Credentials is the single admin record. ResetToken and ResetTokenExpiry are either
// both set or both zero.
type Credentials struct {
	Username         string `json:"username"`
	PasswordHash     string `json:"password_hash"`
	Email            string `json:"email"`
	ResetToken       string `json:"reset_token,omitempty"`
	ResetTokenExpiry int64  `json:"reset_token_expiry,omitempty"` // epoch ms
}

func (c Credentials) HasPendingReset() bool {
	return c.ResetToken != "" && c.ResetTokenExpiry != 0
}

// CredentialsUpdate is a partial update, nil fields are left untouched.
type CredentialsUpdate struct {
	Username         *string
	Email            *string
	Password         *string // plaintext, always hashed before storing
	PasswordHash     *string // an existing digest, stored as is
	ResetToken       *string
	ResetTokenExpiry *int64
}

func clearResetUpdate() CredentialsUpdate {
	empty := ""
	var zero int64
	return CredentialsUpdate{ResetToken: &empty, ResetTokenExpiry: &zero}
}

type CredentialsRepo interface {
	// Load returns ErrNotBootstrapped when nothing is stored yet.
	Load(ctx context.Context) (*Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	// Create stores creds only if nothing is stored yet, otherwise ErrAlreadyBootstrapped.
	Create(ctx context.Context, creds Credentials) error
}

var _ CredentialsRepo = (*RedisCredentialsRepo)(nil)
var _ CredentialsRepo = (*MemoryCredentialsRepo)(nil)

type RedisCredentialsRepo struct {
	redisClient *redis.Client
}

func NewRedisCredentialsRepo(redisClient *redis.Client) *RedisCredentialsRepo {
	return &RedisCredentialsRepo{
		redisClient: redisClient,
	}
}

func (r *RedisCredentialsRepo) Load(ctx context.Context) (*Credentials, error) {
	payload, err := r.redisClient.Get(ctx, credentialsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotBootstrapped
	}
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(payload), &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}

	return &creds, nil
}

func (r *RedisCredentialsRepo) Save(ctx context.Context, creds Credentials) error {
	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	if err := r.redisClient.Set(ctx, credentialsKey, string(payload), 0).Err(); err != nil {
		return fmt.Errorf("set credentials: %w", err)
	}

	return nil
}

func (r *RedisCredentialsRepo) Create(ctx context.Context, creds Credentials) error {
	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	created, err := r.redisClient.SetNX(ctx, credentialsKey, string(payload), 0).Result()
	if err != nil {
		return fmt.Errorf("setnx credentials: %w", err)
	}
	if !created {
		return ErrAlreadyBootstrapped
	}

	return nil
}

type MemoryCredentialsRepo struct {
	mutex sync.Mutex
	creds *Credentials
}

func NewMemoryCredentialsRepo() *MemoryCredentialsRepo {
	return &MemoryCredentialsRepo{}
}

func (r *MemoryCredentialsRepo) Load(_ context.Context) (*Credentials, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.creds == nil {
		return nil, ErrNotBootstrapped
	}
	c := *r.creds
	return &c, nil
}

func (r *MemoryCredentialsRepo) Save(_ context.Context, creds Credentials) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.creds = &creds
	return nil
}

func (r *MemoryCredentialsRepo) Create(_ context.Context, creds Credentials) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.creds != nil {
		return ErrAlreadyBootstrapped
	}
	r.creds = &creds
	return nil
}
