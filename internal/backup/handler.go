package backup

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type runner interface {
	Run(ctx context.Context) (Result, error)
}

type settingsEditor interface {
	Get(ctx context.Context) (*FTPSettings, error)
	Save(ctx context.Context, upd SettingsUpdate) (*FTPSettings, error)
}

// SettingsResponse never carries the stored password, only whether one is set.
type SettingsResponse struct {
	ID            string     `json:"id"`
	Host          string     `json:"ftp_host"`
	Port          int        `json:"ftp_port"`
	Username      string     `json:"ftp_username"`
	PasswordSet   bool       `json:"ftp_password_set"`
	BackupEnabled bool       `json:"backup_enabled"`
	LastBackupAt  *time.Time `json:"last_backup_at"`
}

func newSettingsResponse(s *FTPSettings) SettingsResponse {
	return SettingsResponse{
		ID:            s.ID,
		Host:          s.Host,
		Port:          s.Port,
		Username:      s.Username,
		PasswordSet:   s.Password != "",
		BackupEnabled: s.BackupEnabled,
		LastBackupAt:  s.LastBackupAt,
	}
}

type runResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FileName string `json:"fileName"`
}

type disabledResponse struct {
	Message string `json:"message"`
}

type failedResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	service  runner
	settings settingsEditor
}

func NewHandler(service runner, settings settingsEditor) *Handler {
	return &Handler{
		service:  service,
		settings: settings,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/functions/database-backup", handler.handleRun).Name("database-backup")
	router.HandleFunc("/functions/ftp-settings", handler.handleSettings).Name("ftp-settings")
}

func (handler *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		handler.getSettings(w, r)
	case http.MethodPut:
		handler.saveSettings(w, r)
	default:
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (handler *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalBackupTracer.Start(r.Context(), "backupHandler.getSettings")
	defer span.End()

	settings, err := handler.settings.Get(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		pkg.WriteJSONError(w, http.StatusNotFound, "No FTP settings found")
		return
	}
	if err != nil {
		log.Errorf("get ftp settings: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to load ftp settings")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, newSettingsResponse(settings))
}

func (handler *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalBackupTracer.Start(r.Context(), "backupHandler.saveSettings")
	defer span.End()

	var upd SettingsUpdate
	if err := pkg.DecodeJSON(r, &upd); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := upd.Normalize(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := handler.settings.Save(ctx, upd)
	if err != nil {
		log.Errorf("save ftp settings: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to save ftp settings")
		return
	}

	log.Infof("ftp settings saved, host [%s], backups enabled: %t", settings.Host, settings.BackupEnabled)
	pkg.WriteJSON(w, http.StatusOK, newSettingsResponse(settings))
}

func (handler *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	result, err := handler.service.Run(r.Context())
	if err != nil {
		log.Errorf("database backup: %s", err)
		status := http.StatusInternalServerError
		if errors.Is(err, ErrBackupInProgress) {
			status = http.StatusConflict
		}
		pkg.WriteJSON(w, status, failedResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if result.Skipped {
		pkg.WriteJSON(w, http.StatusOK, disabledResponse{Message: "Backups are disabled"})
		return
	}

	pkg.WriteJSON(w, http.StatusOK, runResponse{
		Success:  true,
		Message:  "Database backup completed successfully",
		FileName: result.FileName,
	})
}
