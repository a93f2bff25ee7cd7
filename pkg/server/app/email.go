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
	"fmt"
	"net/url"
	"strings"

	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/mailer"
	"github.com/pkg/errors"
)

func getDomainFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing url")
	}

	host := u.Hostname()
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host, nil
	}
	domain := parts[len(parts)-2] + "." + parts[len(parts)-1]

	return domain, nil
}

func getNoreplySender(baseURL string) (string, error) {
	domain, err := getDomainFromURL(baseURL)
	if err != nil {
		return "", errors.Wrap(err, "parsing base url")
	}

	addr := fmt.Sprintf("noreply@%s", domain)
	return addr, nil
}

// SendWelcomeEmail sends welcome email
func (a *App) SendWelcomeEmail(email string) error {
	from, err := getNoreplySender(a.WebURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.WelcomeTmplData{
		AccountEmail: email,
		BaseURL:      a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeWelcome, from, []string{email}, data); err != nil {
		return errors.Wrapf(err, "sending welcome email for %s", email)
	}

	return nil
}

// SendNoteDecisionEmail notifies the topper of a review decision on the note
func (a *App) SendNoteDecisionEmail(topper database.User, note database.Note, reason string) error {
	if !topper.Email.Valid || topper.Email.String == "" {
		return ErrEmailRequired
	}

	from, err := getNoreplySender(a.WebURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	var emailType string
	switch note.Status {
	case database.NoteStatusPublished:
		emailType = mailer.EmailTypeNotePublished
	case database.NoteStatusRejected:
		emailType = mailer.EmailTypeNoteRejected
	default:
		return errors.Errorf("no decision email for note status %s", note.Status)
	}

	data := mailer.NoteDecisionTmplData{
		NoteTitle: note.Title,
		Reason:    reason,
		BaseURL:   a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(emailType, from, []string{topper.Email.String}, data); err != nil {
		if errors.Cause(err) == mailer.ErrSMTPNotConfigured {
			return ErrInvalidSMTPConfig
		}

		return errors.Wrapf(err, "sending note decision email for %s", topper.Email.String)
	}

	return nil
}

// SendWithdrawalUpdateEmail notifies the user of a withdrawal status change
func (a *App) SendWithdrawalUpdateEmail(user database.User, req database.WithdrawalRequest) error {
	if !user.Email.Valid || user.Email.String == "" {
		return ErrEmailRequired
	}

	from, err := getNoreplySender(a.WebURL)
	if err != nil {
		return errors.Wrap(err, "getting the sender email")
	}

	data := mailer.WithdrawalUpdateTmplData{
		Amount:  req.Amount,
		Status:  req.Status,
		BaseURL: a.WebURL,
	}

	if err := a.EmailBackend.SendEmail(mailer.EmailTypeWithdrawalUpdate, from, []string{user.Email.String}, data); err != nil {
		if errors.Cause(err) == mailer.ErrSMTPNotConfigured {
			return ErrInvalidSMTPConfig
		}

		return errors.Wrapf(err, "sending withdrawal update email for %s", user.Email.String)
	}

	return nil
}
