package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/metrics"
	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/multierr"
)

var ErrBackupInProgress = errors.New("a backup is already running")

const (
	outcomeSuccess = "success"
	outcomeSkipped = "skipped"
	outcomeFailure = "failure"
)

//go:generate mockgen -source=$GOFILE -destination=backup_mocks_test.go -package=backup_test

type settingsStore interface {
	Get(ctx context.Context) (*FTPSettings, error)
	MarkBackedUp(ctx context.Context, id string, at time.Time) error
}

type tableExporter interface {
	Export(ctx context.Context) (map[string]json.RawMessage, error)
}

type Result struct {
	Skipped  bool
	FileName string
	Size     int
	Tables   int
}

type Service struct {
	settings settingsStore
	exporter tableExporter
	// primaryUploader is built from the stored ftp settings on every run
	primaryUploader func(*FTPSettings) Uploader
	extraUploaders  []Uploader
	metrics         *metrics.Manager
	running         sync.Mutex

	NowFunc func() time.Time
}

type NewServiceParams struct {
	Settings        settingsStore
	Exporter        tableExporter
	PrimaryUploader func(*FTPSettings) Uploader
	ExtraUploaders  []Uploader
	MetricsManager  *metrics.Manager
}

func NewService(params NewServiceParams) *Service {
	primary := params.PrimaryUploader
	if primary == nil {
		primary = func(s *FTPSettings) Uploader {
			return NewFTPUploader(s)
		}
	}

	return &Service{
		settings:        params.Settings,
		exporter:        params.Exporter,
		primaryUploader: primary,
		extraUploaders:  params.ExtraUploaders,
		metrics:         params.MetricsManager,
		NowFunc:         time.Now,
	}
}

// FileName returns the backup file name for t, e.g. database-backup-2025-01-02T03-04-05.json.
func FileName(t time.Time) string {
	timestamp := strings.ReplaceAll(t.UTC().Format("2006-01-02T15:04:05"), ":", "-")
	return "database-backup-" + timestamp + ".json"
}

// Run exports the database and uploads it. Backups disabled in the stored settings give a skipped result.
// Only the FTP upload is mandatory, extra uploaders failing are logged.
func (s *Service) Run(ctx context.Context) (result Result, err error) {
	if !s.running.TryLock() {
		return Result{}, ErrBackupInProgress
	}
	defer s.running.Unlock()

	ctx, span := tracing.GlobalBackupTracer.Start(ctx, "backup.run")
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := outcomeSuccess
		switch {
		case err != nil:
			outcome = outcomeFailure
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case result.Skipped:
			outcome = outcomeSkipped
		}
		if s.metrics != nil {
			s.metrics.CounterBackups.WithLabelValues(outcome).Inc()
			if outcome != outcomeSkipped {
				s.metrics.HistBackupDuration.Observe(time.Since(start).Seconds())
			}
		}
	}()

	log.Infoln("backup: starting database backup ...")

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch FTP settings: %w", err)
	}
	if !settings.BackupEnabled {
		log.Infoln("backup: backups are disabled")
		return Result{Skipped: true}, nil
	}

	data, exportErr := s.exporter.Export(ctx)
	if exportErr != nil {
		if len(data) == 0 {
			return Result{}, fmt.Errorf("export database: %w", exportErr)
		}
		log.Warnf("backup: %d tables could not be exported", len(multierr.Errors(exportErr)))
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("marshal backup: %w", err)
	}

	now := s.NowFunc()
	fileName := FileName(now)
	span.SetAttributes(attribute.String("backup.file", fileName), attribute.Int("backup.size", len(content)))
	log.Infof("backup: file created: %s, size: %d bytes", fileName, len(content))

	primary := s.primaryUploader(settings)
	if err := primary.Upload(ctx, fileName, content); err != nil {
		return Result{}, fmt.Errorf("FTP upload failed: %w", err)
	}

	if err := uploadAll(ctx, s.extraUploaders, fileName, content); err != nil {
		log.Errorf("backup: extra uploads: %s", err)
	}

	if err := s.settings.MarkBackedUp(ctx, settings.ID, now); err != nil {
		log.Errorf("backup: update last backup timestamp: %s", err)
	}

	log.Infof("backup: completed successfully: %s", fileName)
	return Result{
		FileName: fileName,
		Size:     len(content),
		Tables:   len(data),
	}, nil
}

// RunEvery runs a backup on every tick until ctx is done.
func (s *Service) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debugf("backup: scheduled every %s", interval)
	for {
		select {
		case <-ctx.Done():
			log.Debugln("backup: scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				log.Errorf("backup: scheduled run: %s", err)
			}
		}
	}
}
