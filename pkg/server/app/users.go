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

package app

import (
	"errors"

	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/helpers"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	pkgErrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return pkgErrors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// CreateUserParams are the parameters for registering a user
type CreateUserParams struct {
	Email                string
	Password             string
	PasswordConfirmation string
	Name                 string
	Role                 string
}

func validateRegistrationRole(role string) error {
	switch role {
	case database.RoleStudent, database.RoleTopper:
		return nil
	default:
		// reviewer and admin accounts are provisioned from the command line
		return ErrInvalidRole
	}
}

// CreateUser registers a user. Only student and topper roles can be
// registered; privileged accounts go through ProvisionUser.
func (a *App) CreateUser(p CreateUserParams) (database.User, error) {
	if p.Role == "" {
		p.Role = database.RoleStudent
	}
	if err := validateRegistrationRole(p.Role); err != nil {
		return database.User{}, err
	}

	return a.createUser(p)
}

// ProvisionUser creates a user with any role. It backs the command line user
// management and is how reviewer and admin accounts come to exist.
func (a *App) ProvisionUser(p CreateUserParams) (database.User, error) {
	switch p.Role {
	case database.RoleStudent, database.RoleTopper, database.RoleReviewer, database.RoleAdmin:
	default:
		return database.User{}, ErrInvalidRole
	}

	return a.createUser(p)
}

func (a *App) createUser(p CreateUserParams) (database.User, error) {
	if p.Email == "" {
		return database.User{}, ErrEmailRequired
	}
	if len(p.Password) < 8 {
		return database.User{}, ErrPasswordTooShort
	}
	if p.Password != p.PasswordConfirmation {
		return database.User{}, ErrPasswordConfirmationMismatch
	}

	tx := a.DB.Begin()

	var count int64
	if err := tx.Model(&database.User{}).Where("email = ?", p.Email).Count(&count).Error; err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "counting user")
	}
	if count > 0 {
		tx.Rollback()
		return database.User{}, ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "hashing password")
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "generating uuid")
	}

	user := database.User{
		UUID:              uuid,
		Email:             database.ToNullString(p.Email),
		Password:          database.ToNullString(string(hashedPassword)),
		Name:              p.Name,
		Role:              p.Role,
		FreeDownloadsLeft: DailyFreeDownloads,
	}
	if err = tx.Save(&user).Error; err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "saving user")
	}

	if err := a.TouchLastLoginAt(user, tx); err != nil {
		tx.Rollback()
		return database.User{}, pkgErrors.Wrap(err, "updating last login")
	}

	tx.Commit()

	return user, nil
}

// Authenticate authenticates a user
func (a *App) Authenticate(email, password string) (*database.User, error) {
	var user database.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte(password))
	if err != nil {
		return nil, ErrLoginInvalid
	}

	return &user, nil
}

// SignIn signs in a user
func (a *App) SignIn(user *database.User) (*database.Session, error) {
	err := a.TouchLastLoginAt(*user, a.DB)
	if err != nil {
		log.ErrorWrap(err, "touching login timestamp")
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "creating session")
	}

	return &session, nil
}

// GetUserByUUID returns the user with the given UUID
func (a *App) GetUserByUUID(uuid string) (database.User, error) {
	var user database.User
	err := a.DB.Where("uuid = ?", uuid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.User{}, ErrNotFound
	}
	if err != nil {
		return database.User{}, pkgErrors.Wrap(err, "finding user")
	}

	return user, nil
}

// GetUserByEmail returns the user with the given email
func (a *App) GetUserByEmail(email string) (database.User, error) {
	var user database.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.User{}, ErrNotFound
	}
	if err != nil {
		return database.User{}, pkgErrors.Wrap(err, "finding user")
	}

	return user, nil
}

// RemoveUser deletes the account with the given email along with its sessions
// and tokens. An account that has notes or ledger entries cannot be removed,
// since that would break the coin ledger.
func (a *App) RemoveUser(email string) error {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return err
	}

	var noteCount int64
	if err := a.DB.Model(&database.Note{}).Where("topper_id = ?", user.ID).Count(&noteCount).Error; err != nil {
		return pkgErrors.Wrap(err, "counting notes")
	}
	var transactionCount int64
	if err := a.DB.Model(&database.Transaction{}).Where("user_id = ?", user.ID).Count(&transactionCount).Error; err != nil {
		return pkgErrors.Wrap(err, "counting transactions")
	}
	if noteCount > 0 || transactionCount > 0 {
		return ErrUserHasExistingResources
	}

	tx := a.DB.Begin()

	if err := tx.Where("user_id = ?", user.ID).Delete(&database.Session{}).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "deleting sessions")
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&database.Token{}).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "deleting tokens")
	}
	if err := tx.Where("id = ?", user.ID).Delete(&database.User{}).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "deleting user")
	}

	if err := tx.Commit().Error; err != nil {
		return pkgErrors.Wrap(err, "committing transaction")
	}

	return nil
}
