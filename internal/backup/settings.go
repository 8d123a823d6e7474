package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrSettingsNotFound = errors.New("ftp settings not found")
	ErrInvalidSettings  = errors.New("invalid ftp settings")
)

const settingsColumns = `id, ftp_host, ftp_port, ftp_username, ftp_password, backup_enabled, last_backup_at`

// FTPSettings is the single row of ftp_settings, the backup target.
type FTPSettings struct {
	ID            string
	Host          string
	Port          int
	Username      string
	Password      string
	BackupEnabled bool
	LastBackupAt  *time.Time
}

// Addr returns host:port, with the default FTP port when none is set.
func (s *FTPSettings) Addr() string {
	port := s.Port
	if port <= 0 {
		port = 21
	}
	return fmt.Sprintf("%s:%d", s.Host, port)
}

// SettingsUpdate replaces the editable fields. A nil Password keeps the stored one.
type SettingsUpdate struct {
	Host          string  `json:"ftp_host"`
	Port          int     `json:"ftp_port"`
	Username      string  `json:"ftp_username"`
	Password      *string `json:"ftp_password,omitempty"`
	BackupEnabled bool    `json:"backup_enabled"`
}

func (u *SettingsUpdate) Normalize() error {
	u.Host = strings.TrimSpace(u.Host)
	u.Username = strings.TrimSpace(u.Username)
	if u.Port == 0 {
		u.Port = 21
	}
	if u.Port < 1 || u.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, u.Port)
	}
	if u.BackupEnabled && (u.Host == "" || u.Username == "") {
		return fmt.Errorf("%w: host and username are required when backups are enabled", ErrInvalidSettings)
	}
	return nil
}

type dbPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type SettingsRepo struct {
	db dbPool
}

func NewSettingsRepo(db dbPool) *SettingsRepo {
	return &SettingsRepo{
		db: db,
	}
}

func (r *SettingsRepo) Get(ctx context.Context) (*FTPSettings, error) {
	var s FTPSettings
	err := r.db.QueryRow(
		ctx,
		`SELECT `+settingsColumns+`
		FROM ftp_settings
		ORDER BY created_at
		LIMIT 1`,
	).Scan(&s.ID, &s.Host, &s.Port, &s.Username, &s.Password, &s.BackupEnabled, &s.LastBackupAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("get ftp settings: %w", err)
	}
	return &s, nil
}

// Save updates the settings row, creating it on first use. The oldest row is the one
// backups read, so that is the one updated.
func (r *SettingsRepo) Save(ctx context.Context, upd SettingsUpdate) (*FTPSettings, error) {
	var s FTPSettings
	err := r.db.QueryRow(
		ctx,
		`UPDATE ftp_settings
		SET ftp_host = $1, ftp_port = $2, ftp_username = $3,
			ftp_password = COALESCE($4, ftp_password), backup_enabled = $5, updated_at = now()
		WHERE id = (SELECT id FROM ftp_settings ORDER BY created_at LIMIT 1)
		RETURNING `+settingsColumns,
		upd.Host, upd.Port, upd.Username, upd.Password, upd.BackupEnabled,
	).Scan(&s.ID, &s.Host, &s.Port, &s.Username, &s.Password, &s.BackupEnabled, &s.LastBackupAt)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update ftp settings: %w", err)
	}

	password := ""
	if upd.Password != nil {
		password = *upd.Password
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO ftp_settings (ftp_host, ftp_port, ftp_username, ftp_password, backup_enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+settingsColumns,
		upd.Host, upd.Port, upd.Username, password, upd.BackupEnabled,
	).Scan(&s.ID, &s.Host, &s.Port, &s.Username, &s.Password, &s.BackupEnabled, &s.LastBackupAt)
	if err != nil {
		return nil, fmt.Errorf("insert ftp settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepo) MarkBackedUp(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE ftp_settings SET last_backup_at = $1, updated_at = now() WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("update last backup time: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSettingsNotFound
	}
	return nil
}
