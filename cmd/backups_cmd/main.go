package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/cloudyskybd/portfolio/internal/backup"
	"github.com/cloudyskybd/portfolio/internal/config"
	"github.com/cloudyskybd/portfolio/internal/db"
	"github.com/cloudyskybd/portfolio/internal/logging"
)

// runs a single database backup using the stored FTP settings, then exits
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file with secrets")
	skipDrive := flag.Bool("skip-drive", false, "do not upload the backup to google drive")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Debugf("no env file loaded from [%s]: %s", *envFile, err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      true,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		SentryServerName: "backups-cmd",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	var extraUploaders []backup.Uploader
	if cfg.GoogleDriveCredentialsFile != "" && !*skipDrive {
		driveUploader, err := backup.NewDriveUploaderFromFile(ctx, cfg.GoogleDriveCredentialsFile, cfg.GoogleDriveFolderID)
		if err != nil {
			log.Errorf("google drive upload disabled: %s", err)
		} else {
			extraUploaders = append(extraUploaders, driveUploader)
		}
	}

	service := backup.NewService(backup.NewServiceParams{
		Settings:       backup.NewSettingsRepo(dbPool),
		Exporter:       backup.NewPsqlExporter(dbPool),
		ExtraUploaders: extraUploaders,
	})

	result, err := service.Run(ctx)
	if err != nil {
		log.Errorf("backup failed: %s", err)
		dbPool.Close()
		os.Exit(1)
	}
	if result.Skipped {
		log.Warnln("backups are disabled in ftp settings, nothing done")
		return
	}

	log.Infof("backup [%s] done: %d tables, %d bytes", result.FileName, result.Tables, result.Size)
}
