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
	"time"

	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/notebazaar/notebazaar/pkg/server/mailer"
	"github.com/notebazaar/notebazaar/pkg/server/token"
	pkgErrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// resetTokenValidityMinutes is how long a password reset token stays usable
const resetTokenValidityMinutes = 10

// ErrPasswordResetTokenExpired is an error for an expired password reset token
var ErrPasswordResetTokenExpired = errors.New("the password reset token is expired")

// CreateResetToken issues a password reset token for the account with the
// given email and sends the reset email. Unknown emails are not revealed to
// the caller.
func (a *App) CreateResetToken(email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	var user database.User
	err := a.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return pkgErrors.Wrap(err, "finding user")
	}

	resetToken, err := token.Create(a.DB, user.ID, database.TokenTypeResetPassword)
	if err != nil {
		return pkgErrors.Wrap(err, "creating token")
	}

	if err := a.sendPasswordResetEmail(email, resetToken.Value); err != nil {
		if err == ErrInvalidSMTPConfig {
			log.WithFields(log.Fields{
				"email": email,
			}).Error("SMTP is not configured; skipping password reset email")
			return nil
		}

		return pkgErrors.Wrap(err, "sending password reset email")
	}

	return nil
}

func (a *App) sendPasswordResetEmail(email, tokenValue string) error {
	from, err := getNoreplySender(a.WebURL)
	if err != nil {
		return pkgErrors.Wrap(err, "getting the sender email")
	}

	data := mailer.EmailResetPasswordTmplData{
		AccountEmail: email,
		Token:        tokenValue,
		BaseURL:      a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeResetPassword, from, []string{email}, data); err != nil {
		if pkgErrors.Cause(err) == mailer.ErrSMTPNotConfigured {
			return ErrInvalidSMTPConfig
		}

		return pkgErrors.Wrapf(err, "sending password reset email for %s", email)
	}

	return nil
}

// ResetPassword sets a new password for the user owning the given reset
// token. The token is single-use and expires after a few minutes. All
// existing sessions of the user are invalidated.
func (a *App) ResetPassword(tokenValue, password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var resetToken database.Token
	err := a.DB.Where("value = ? AND type = ?", tokenValue, database.TokenTypeResetPassword).First(&resetToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return pkgErrors.Wrap(err, "finding token")
	}

	if resetToken.UsedAt != nil {
		return ErrPasswordResetTokenExpired
	}
	if a.Clock.Now().Sub(resetToken.CreatedAt) > resetTokenValidityMinutes*time.Minute {
		return ErrPasswordResetTokenExpired
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return pkgErrors.Wrap(err, "hashing password")
	}

	tx := a.DB.Begin()

	err = tx.Model(&database.User{}).Where("id = ?", resetToken.UserID).
		Update("password", database.ToNullString(string(hashedPassword))).Error
	if err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "updating password")
	}

	now := a.Clock.Now()
	if err := tx.Model(&resetToken).Update("used_at", &now).Error; err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "marking token used")
	}

	if err := a.DeleteUserSessions(tx, resetToken.UserID); err != nil {
		tx.Rollback()
		return pkgErrors.Wrap(err, "deleting user sessions")
	}

	if err := tx.Commit().Error; err != nil {
		return pkgErrors.Wrap(err, "committing transaction")
	}

	return nil
}
