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
	"io"
	"os"

	"github.com/notebazaar/notebazaar/pkg/prompt"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/config"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/pkg/errors"
)

// setupFlagSet creates a FlagSet with standard usage format
func setupFlagSet(name, usageCmd string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Printf(`Usage:
  %s [flags]

Flags:
`, usageCmd)
		fs.PrintDefaults()
	}

	return fs
}

// requireString validates that a required string flag is not empty
func requireString(fs *flag.FlagSet, value, fieldName string) {
	if value == "" {
		fmt.Printf("Error: %s is required\n", fieldName)
		fs.Usage()
		os.Exit(1)
	}
}

// setupAppWithDB initializes an app for one-off commands and returns a cleanup
// function that closes the database
func setupAppWithDB(fs *flag.FlagSet, databaseURL, dbPath string) (*app.App, func()) {
	cfg, err := config.New(config.Params{
		DatabaseURL: databaseURL,
		DBPath:      dbPath,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	a := initApp(cfg)
	cleanup := func() {
		sqlDB, err := a.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	return &a, cleanup
}

// confirm prompts for user input to confirm a choice
func confirm(r io.Reader, question string, optimistic bool) (bool, error) {
	message := prompt.FormatQuestion(question, optimistic)
	fmt.Print(message + " ")

	confirmed, err := prompt.ReadYesNo(r, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading stdin")
	}

	return confirmed, nil
}

func userCreateCmd(args []string) {
	fs := setupFlagSet("create", "notebazaar-server user create")

	email := fs.String("email", "", "User email address (required)")
	password := fs.String("password", "", "User password (required)")
	name := fs.String("name", "", "Display name")
	role := fs.String("role", "", "Account role: student, topper, reviewer or admin (required)")
	databaseURL := fs.String("databaseUrl", "", "Postgres connection string (env: DATABASE_URL, empty for SQLite)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notebazaar/server.db)")

	fs.Parse(args)

	requireString(fs, *email, "email")
	requireString(fs, *password, "password")
	requireString(fs, *role, "role")

	a, cleanup := setupAppWithDB(fs, *databaseURL, *dbPath)
	defer cleanup()

	_, err := a.ProvisionUser(app.CreateUserParams{
		Email:                *email,
		Password:             *password,
		PasswordConfirmation: *password,
		Name:                 *name,
		Role:                 *role,
	})
	if err != nil {
		log.ErrorWrap(err, "creating user")
		os.Exit(1)
	}

	fmt.Printf("User created successfully\n")
	fmt.Printf("Email: %s\n", *email)
	fmt.Printf("Role: %s\n", *role)
}

func userRemoveCmd(args []string, stdin io.Reader) {
	fs := setupFlagSet("remove", "notebazaar-server user remove")

	email := fs.String("email", "", "User email address (required)")
	databaseURL := fs.String("databaseUrl", "", "Postgres connection string (env: DATABASE_URL, empty for SQLite)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notebazaar/server.db)")

	fs.Parse(args)

	requireString(fs, *email, "email")

	a, cleanup := setupAppWithDB(fs, *databaseURL, *dbPath)
	defer cleanup()

	if _, err := a.GetUserByEmail(*email); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			fmt.Printf("Error: user with email %s not found\n", *email)
		} else {
			log.ErrorWrap(err, "finding user")
		}
		os.Exit(1)
	}

	ok, err := confirm(stdin, fmt.Sprintf("Remove user %s?", *email), false)
	if err != nil {
		log.ErrorWrap(err, "getting confirmation")
		os.Exit(1)
	}
	if !ok {
		fmt.Println("Aborted by user")
		os.Exit(0)
	}

	if err := a.RemoveUser(*email); err != nil {
		if errors.Is(err, app.ErrUserHasExistingResources) {
			fmt.Printf("Error: %s\n", err)
		} else {
			log.ErrorWrap(err, "removing user")
		}
		os.Exit(1)
	}

	fmt.Printf("User removed successfully\n")
	fmt.Printf("Email: %s\n", *email)
}

func userListCmd(args []string) {
	fs := setupFlagSet("list", "notebazaar-server user list")

	role := fs.String("role", "", "Only list accounts with the given role")
	databaseURL := fs.String("databaseUrl", "", "Postgres connection string (env: DATABASE_URL, empty for SQLite)")
	dbPath := fs.String("dbPath", "", "Path to SQLite database file (env: DBPath, default: $XDG_DATA_HOME/notebazaar/server.db)")

	fs.Parse(args)

	a, cleanup := setupAppWithDB(fs, *databaseURL, *dbPath)
	defer cleanup()

	conn := a.DB.Order("id ASC")
	if *role != "" {
		conn = conn.Where("role = ?", *role)
	}

	var users []database.User
	if err := conn.Find(&users).Error; err != nil {
		log.ErrorWrap(err, "listing users")
		os.Exit(1)
	}

	for _, user := range users {
		fmt.Printf("%s\t%s\t%s\n", user.UUID, user.Role, user.Email.String)
	}
}

func userUsageCmd() {
	fmt.Printf(`Manage users

Usage:
  notebazaar-server user [command] [flags]

Available commands:
  create: Create a user with any role
  remove: Remove a user
  list: List users
`)
}

func userCmd(args []string) {
	if len(args) < 1 {
		userUsageCmd()
		return
	}

	switch args[0] {
	case "create":
		userCreateCmd(args[1:])
	case "remove":
		userRemoveCmd(args[1:], os.Stdin)
	case "list":
		userListCmd(args[1:])
	default:
		fmt.Printf("Unknown command %s\n", args[0])
		userUsageCmd()
		os.Exit(1)
	}
}
