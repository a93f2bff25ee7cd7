/* Copyright 2025 NoteBazaar Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/notebazaar/notebazaar/pkg/clock"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/buildinfo"
	"github.com/notebazaar/notebazaar/pkg/server/config"
	"github.com/notebazaar/notebazaar/pkg/server/controllers"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/notebazaar/notebazaar/pkg/server/mailer"
	"github.com/notebazaar/notebazaar/pkg/server/storage"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func initDB(cfg config.Config) *gorm.DB {
	db := database.Open(cfg.DatabaseURL, cfg.DBPath)
	database.InitSchema(db)

	return db
}

func initEmailBackend(cfg config.Config) mailer.Backend {
	backend, err := mailer.NewDefaultBackend()
	if err != nil {
		if cfg.IsProd() {
			log.ErrorWrap(err, "initializing email backend")
		}

		return mailer.NewStdoutBackend()
	}

	log.Info("Email backend configured")
	return backend
}

func initFileStore(cfg config.Config) (storage.FileStore, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Store(storage.S3Params{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
	}

	return storage.NewLocalStore(cfg.UploadDir, fmt.Sprintf("%s/uploads", cfg.WebURL))
}

func initApp(cfg config.Config) app.App {
	db := initDB(cfg)

	fileStore, err := initFileStore(cfg)
	if err != nil {
		panic(errors.Wrap(err, "initializing file store"))
	}

	return app.App{
		DB:                  db,
		Clock:               clock.New(),
		EmailBackend:        initEmailBackend(cfg),
		FileStore:           fileStore,
		WebURL:              cfg.WebURL,
		DisableRegistration: cfg.DisableRegistration,
		Port:                cfg.Port,
	}
}

func startCmd(args []string) {
	startFlags := flag.NewFlagSet("start", flag.ExitOnError)
	startFlags.Usage = func() {
		fmt.Printf(`Usage:
  notebazaar-server start [flags]

Flags:
`)
		startFlags.PrintDefaults()
	}

	appEnv := startFlags.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := startFlags.String("port", "", "Server port (env: PORT, default: 3001)")
	webURL := startFlags.String("webUrl", "", "Full URL to server without trailing slash (env: WebURL, example: https://example.com)")
	databaseURL := startFlags.String("databaseUrl", "", "Postgres connection string (env: DATABASE_URL, empty for SQLite)")
	dbPath := startFlags.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notebazaar/server.db)")
	disableRegistration := startFlags.Bool("disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")
	logLevel := startFlags.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	startFlags.Parse(args)

	cfg, err := config.New(config.Params{
		AppEnv:              *appEnv,
		Port:                *port,
		WebURL:              *webURL,
		DatabaseURL:         *databaseURL,
		DBPath:              *dbPath,
		DisableRegistration: *disableRegistration,
		LogLevel:            *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		startFlags.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	app := initApp(cfg)
	defer func() {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}()

	cr, err := app.StartJobs()
	if err != nil {
		panic(errors.Wrap(err, "starting jobs"))
	}
	defer cr.Stop()

	ctl := controllers.New(&app)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(&app, ctl),
		Controllers: ctl,
	}
	if cfg.S3Bucket == "" {
		rc.UploadDir = cfg.UploadDir
	}

	r, err := controllers.NewRouter(&app, rc)
	if err != nil {
		panic(errors.Wrap(err, "initializing router"))
	}

	log.WithFields(log.Fields{
		"version": buildinfo.Version,
		"port":    cfg.Port,
	}).Info("NoteBazaar server starting")

	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.ErrorWrap(err, "server failed")
		os.Exit(1)
	}
}

func versionCmd() {
	fmt.Printf("notebazaar-server-%s\n", buildinfo.Version)
}

func rootCmd() {
	fmt.Printf(`NoteBazaar server - a marketplace for study notes

Usage:
  notebazaar-server [command] [flags]

Available commands:
  start: Start the server (use 'notebazaar-server start --help' for flags)
  user: Manage users (use 'notebazaar-server user' for subcommands)
  version: Print the version
`)
}

func main() {
	godotenv.Load()

	if len(os.Args) < 2 {
		rootCmd()
		return
	}

	cmd := os.Args[1]

	switch cmd {
	case "start":
		startCmd(os.Args[2:])
	case "user":
		userCmd(os.Args[2:])
	case "version":
		versionCmd()
	default:
		fmt.Printf("Unknown command %s\n", cmd)
		rootCmd()
		os.Exit(1)
	}
}
