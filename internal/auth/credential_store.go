package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	log "github.com/sirupsen/logrus"
)

const MinPasswordLength = 6

// CredentialStore guarantees that the stored password is always a digest: plaintext
// found on read is migrated in place, a password given on update is always hashed.
type CredentialStore struct {
	repo CredentialsRepo
}

func NewCredentialStore(repo CredentialsRepo) *CredentialStore {
	return &CredentialStore{
		repo: repo,
	}
}

func (s *CredentialStore) Get(ctx context.Context) (*Credentials, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "credentialStore.get")
	defer span.End()

	creds, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if !pkg.IsPasswordHashed(creds.PasswordHash) {
		log.Warnln("admin credentials: stored password is not hashed, migrating")
		hash, err := pkg.HashPassword(creds.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("hash stored password: %w", err)
		}
		creds.PasswordHash = hash
		if err := s.repo.Save(ctx, *creds); err != nil {
			return nil, fmt.Errorf("save migrated credentials: %w", err)
		}
	}

	return creds, nil
}

func (s *CredentialStore) Update(ctx context.Context, update CredentialsUpdate) (*Credentials, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "credentialStore.update")
	defer span.End()

	creds, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		creds.Username = *update.Username
	}
	if update.Email != nil {
		creds.Email = *update.Email
	}
	if update.Password != nil && update.PasswordHash != nil {
		return nil, errors.New("password and password hash are mutually exclusive")
	}
	if update.Password != nil {
		digest, err := pkg.HashPassword(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		creds.PasswordHash = digest
	}
	if update.PasswordHash != nil {
		if !pkg.IsPasswordHashed(*update.PasswordHash) {
			return nil, errors.New("password hash is not a digest")
		}
		creds.PasswordHash = *update.PasswordHash
	}
	if update.ResetToken != nil {
		creds.ResetToken = *update.ResetToken
	}
	if update.ResetTokenExpiry != nil {
		creds.ResetTokenExpiry = *update.ResetTokenExpiry
	}

	if (creds.ResetToken == "") != (creds.ResetTokenExpiry == 0) {
		return nil, errors.New("reset token and its expiry must be set together")
	}

	if err := s.repo.Save(ctx, *creds); err != nil {
		return nil, err
	}

	return creds, nil
}

// Bootstrap stores the very first admin record. It never overwrites an existing one.
func (s *CredentialStore) Bootstrap(ctx context.Context, username, password, email string) error {
	if username == "" {
		return fmt.Errorf("%w: empty username", ErrInvalidProfile)
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := pkg.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.repo.Create(ctx, Credentials{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
	})
	if errors.Is(err, ErrAlreadyBootstrapped) {
		return err
	}
	if err != nil {
		return fmt.Errorf("create credentials: %w", err)
	}

	log.Warnf("admin credentials bootstrapped for user [%s]", username)
	return nil
}
