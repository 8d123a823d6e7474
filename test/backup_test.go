//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudyskybd/portfolio/internal/backup"
)

func (s *IntegrationTestSuite) TestDatabaseBackup() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.login(ctx, testPassword)

	status, _ := s.do(ctx, http.MethodPost, "/functions/database-backup", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// no settings row yet
	status, body := s.do(ctx, http.MethodPost, "/functions/database-backup", token, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "failed to fetch FTP settings")

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO ftp_settings (ftp_host, ftp_port, ftp_username, ftp_password, backup_enabled)
		 VALUES ('127.0.0.1', 1, 'backup', 'backup', false)`,
	)
	require.NoError(t, err)
	defer func() {
		_, err := s.DB.ExecContext(context.Background(), "DELETE FROM ftp_settings")
		assert.NoError(t, err)
	}()

	status, body = s.do(ctx, http.MethodPost, "/functions/database-backup", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"message":"Backups are disabled"}`, string(body))

	// nothing listens on port 1, the upload fails after the export
	_, err = s.DB.ExecContext(ctx, "UPDATE ftp_settings SET backup_enabled = true")
	require.NoError(t, err)

	status, body = s.do(ctx, http.MethodPost, "/functions/database-backup", token, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body), "FTP upload failed")
}

func (s *IntegrationTestSuite) TestFTPSettings() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		_, err := s.DB.ExecContext(context.Background(), "DELETE FROM ftp_settings")
		assert.NoError(t, err)
	}()

	token := s.login(ctx, testPassword)

	status, _ := s.do(ctx, http.MethodGet, "/functions/ftp-settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(ctx, http.MethodGet, "/functions/ftp-settings", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := s.do(ctx, http.MethodPut, "/functions/ftp-settings", token, map[string]any{
		"ftp_host":       "127.0.0.1",
		"ftp_port":       1,
		"ftp_username":   "backup",
		"ftp_password":   "backup-secret",
		"backup_enabled": false,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.NotContains(t, string(body), "backup-secret")

	status, body = s.do(ctx, http.MethodGet, "/functions/ftp-settings", token, nil)
	require.Equal(t, http.StatusOK, status)
	var settings backup.SettingsResponse
	require.NoError(t, json.Unmarshal(body, &settings))
	assert.Equal(t, "127.0.0.1", settings.Host)
	assert.Equal(t, 1, settings.Port)
	assert.True(t, settings.PasswordSet)
	assert.False(t, settings.BackupEnabled)

	// the saved row is the one backups read
	status, body = s.do(ctx, http.MethodPost, "/functions/database-backup", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"message":"Backups are disabled"}`, string(body))

	var password string
	require.NoError(t, s.DB.QueryRowContext(ctx, "SELECT ftp_password FROM ftp_settings").Scan(&password))
	assert.Equal(t, "backup-secret", password)
}
