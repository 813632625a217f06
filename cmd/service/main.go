package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/workouttracker/internal"
	"github.com/2beens/workouttracker/internal/config"
	"github.com/2beens/workouttracker/internal/logging"
)

func main() {
	fmt.Println("starting ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	logging.Setup(cfg, os.Getenv("SENTRY_DSN"))

	log.Debugf("using port: %d", cfg.Port)
	log.Debugf("using server logs path: [%s]", cfg.LogsPath)

	passwordHash := os.Getenv("WORKOUT_TRACKER_PASSWORD_HASH")
	if passwordHash == "" {
		log.Fatalln("password hash not set. use WORKOUT_TRACKER_PASSWORD_HASH (workoutctl hash-password can make one)")
	}

	redisPassword := os.Getenv("WORKOUT_TRACKER_REDIS_PASS")
	if redisPassword == "" {
		log.Warnln("redis password not set. use WORKOUT_TRACKER_REDIS_PASS")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	if honeycombEnabled {
		if honeycombApiKey := os.Getenv("HONEYCOMB_API_KEY"); honeycombApiKey == "" {
			log.Warnln("HONEYCOMB_API_KEY env var not set")
		}
	} else {
		log.Debugln("honeycomb tracing disabled")
	}

	var gdriveCredentials []byte
	if credentialsFile := os.Getenv("WORKOUT_TRACKER_GDRIVE_CREDENTIALS"); credentialsFile != "" {
		gdriveCredentials, err = os.ReadFile(credentialsFile)
		if err != nil {
			log.Fatalf("unable to read google drive credentials file: %s", err)
		}
	}

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())

	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			PasswordHash:            passwordHash,
			PostgresUser:            os.Getenv("WORKOUT_TRACKER_DB_USER"),
			PostgresPassword:        os.Getenv("WORKOUT_TRACKER_DB_PASS"),
			RedisPassword:           redisPassword,
			HoneycombTracingEnabled: honeycombEnabled,
			GDriveCredentialsJSON:   gdriveCredentials,
		},
	)
	if err != nil {
		log.Fatalf("new server: %s", err)
	}

	server.Serve(cfg.Host, cfg.Port)

	receivedSig := <-chOsInterrupt
	log.Warnf("signal [%s] received, killing everything ...", receivedSig)
	cancel()

	server.GracefulShutdown()
}
