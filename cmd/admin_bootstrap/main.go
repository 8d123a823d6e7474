package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/cloudyskybd/portfolio/internal/auth"
	"github.com/cloudyskybd/portfolio/internal/config"
	"github.com/cloudyskybd/portfolio/internal/logging"
	"github.com/cloudyskybd/portfolio/internal/mailer"
)

// stores the first admin credentials, refuses to run when credentials already exist
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file with secrets")
	username := flag.String("username", "", "admin username (defaults to admin_bootstrap_username from config)")
	email := flag.String("email", "", "admin email (defaults to admin_bootstrap_email from config)")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Debugf("no env file loaded from [%s]: %s", *envFile, err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	if *username == "" {
		*username = cfg.AdminBootstrapUsername
	}
	if *email == "" {
		*email = cfg.AdminBootstrapEmail
	}
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")
	if *username == "" || password == "" {
		log.Fatalln("username and password required. set -username and ADMIN_BOOTSTRAP_PASSWORD")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("ADMIN_REDIS_PASS"),
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("close redis client: %s", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	authService := auth.NewService(auth.NewServiceParams{
		CredentialsRepo: auth.NewRedisCredentialsRepo(rdb),
		SessionStore:    auth.NewRedisSessionStore(rdb),
		Mailer:          mailer.LogSender{},
		SiteOrigin:      cfg.SiteOrigin,
	})

	err = authService.Bootstrap(ctx, *username, password, *email)
	if errors.Is(err, auth.ErrAlreadyBootstrapped) {
		log.Warnln("admin credentials already stored, nothing to do")
		return
	}
	if err != nil {
		log.Fatalf("bootstrap admin: %s", err)
	}

	log.Infof("admin [%s] bootstrapped", *username)
}
