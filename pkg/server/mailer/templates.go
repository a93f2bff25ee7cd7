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

package mailer

import (
	"strings"
	"text/template"

	"github.com/pkg/errors"
)

const (
	// EmailTypeWelcome is the welcome email sent after registration
	EmailTypeWelcome = "welcome"
	// EmailTypeNotePublished notifies a topper that a note was published
	EmailTypeNotePublished = "note_published"
	// EmailTypeNoteRejected notifies a topper that a note was rejected
	EmailTypeNoteRejected = "note_rejected"
	// EmailTypeWithdrawalUpdate notifies a user of a withdrawal status change
	EmailTypeWithdrawalUpdate = "withdrawal_update"
	// EmailTypeResetPassword is the password reset email
	EmailTypeResetPassword = "reset_password"
)

// WelcomeTmplData is the data for the welcome email
type WelcomeTmplData struct {
	AccountEmail string
	BaseURL      string
}

// NoteDecisionTmplData is the data for the note published/rejected emails
type NoteDecisionTmplData struct {
	NoteTitle string
	Reason    string
	BaseURL   string
}

// WithdrawalUpdateTmplData is the data for the withdrawal update email
type WithdrawalUpdateTmplData struct {
	Amount  int
	Status  string
	BaseURL string
}

// EmailResetPasswordTmplData is the data for the password reset email
type EmailResetPasswordTmplData struct {
	AccountEmail string
	Token        string
	BaseURL      string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

// Templates holds the parsed email templates
type Templates map[string]emailTemplate

var welcomeBody = `Welcome to NoteBazaar!

Your account {{.AccountEmail}} is ready. Browse notes, earn coins for
engagement, and if you are a topper, upload your study materials to start
earning.

{{.BaseURL}}
`

var notePublishedBody = `Good news - your note "{{.NoteTitle}}" has been approved and published.

Students can now find and download it. You earn coins from every paid download.

{{.BaseURL}}
`

var noteRejectedBody = `Your note "{{.NoteTitle}}" was not approved.
{{if .Reason}}
Reviewer comments: {{.Reason}}
{{end}}
You can revise and submit it again.

{{.BaseURL}}
`

var withdrawalUpdateBody = `Your withdrawal request for Rs. {{.Amount}} is now {{.Status}}.

{{.BaseURL}}
`

var resetPasswordBody = `A password reset was requested for {{.AccountEmail}}.

Follow the link below to choose a new password. The link is valid for 10
minutes.

{{.BaseURL}}/password-reset/{{.Token}}

If you did not request this, you can ignore this email.
`

// NewTemplates parses and returns the email templates
func NewTemplates() Templates {
	return Templates{
		EmailTypeWelcome: {
			subject: "Welcome to NoteBazaar",
			body:    template.Must(template.New(EmailTypeWelcome).Parse(welcomeBody)),
		},
		EmailTypeNotePublished: {
			subject: "Your note has been published",
			body:    template.Must(template.New(EmailTypeNotePublished).Parse(notePublishedBody)),
		},
		EmailTypeNoteRejected: {
			subject: "Your note was not approved",
			body:    template.Must(template.New(EmailTypeNoteRejected).Parse(noteRejectedBody)),
		},
		EmailTypeWithdrawalUpdate: {
			subject: "Withdrawal request update",
			body:    template.Must(template.New(EmailTypeWithdrawalUpdate).Parse(withdrawalUpdateBody)),
		},
		EmailTypeResetPassword: {
			subject: "Reset your password",
			body:    template.Must(template.New(EmailTypeResetPassword).Parse(resetPasswordBody)),
		},
	}
}

// Execute renders the template of the given type with the given data. It
// returns the subject and the rendered body.
func (t Templates) Execute(templateType string, data interface{}) (string, string, error) {
	tmpl, ok := t[templateType]
	if !ok {
		return "", "", errors.Errorf("unsupported template type %s", templateType)
	}

	var sb strings.Builder
	if err := tmpl.body.Execute(&sb, data); err != nil {
		return "", "", errors.Wrap(err, "executing the template")
	}

	return tmpl.subject, sb.String(), nil
}
