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

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is an error for a nonexistent resource
	ErrNotFound = errors.New("not found")
	// ErrLoginRequired is an error for missing authentication
	ErrLoginRequired = errors.New("login required")
	// ErrLoginInvalid is an error for invalid credentials
	ErrLoginInvalid = errors.New("wrong email and password combination")
	// ErrEmailRequired is an error for missing email
	ErrEmailRequired = errors.New("email is required")
	// ErrPasswordRequired is an error for missing password
	ErrPasswordRequired = errors.New("password is required")
	// ErrPasswordTooShort is an error for a password that is too short
	ErrPasswordTooShort = errors.New("password should be longer than 8 characters")
	// ErrPasswordConfirmationMismatch is an error for password not matching its confirmation
	ErrPasswordConfirmationMismatch = errors.New("password does not match the confirmation")
	// ErrDuplicateEmail is an error for a duplicate email
	ErrDuplicateEmail = errors.New("email is already registered")
	// ErrInvalidRole is an error for an unsupported user role
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidSMTPConfig is an error for invalid SMTP configuration
	ErrInvalidSMTPConfig = errors.New("SMTP is not configured")
	// ErrUserHasExistingResources is an error for removing an account that
	// still owns notes or ledger entries
	ErrUserHasExistingResources = errors.New("user has existing notes or transactions")

	// ErrTitleRequired is an error for a note missing a title
	ErrTitleRequired = errors.New("title is required")
	// ErrSubjectRequired is an error for a note missing a subject
	ErrSubjectRequired = errors.New("subject is required")
	// ErrInvalidPrice is an error for a negative note price
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidLeaderboard is an error for an unsupported leaderboard kind
	ErrInvalidLeaderboard = errors.New("unsupported leaderboard kind")
	// ErrInvalidAmount is an error for a non-positive coin amount
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidTransition is an error for a state change that is not allowed
	// from the current state
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrBelowMinimum is an error for a withdrawal request below the minimum
	// payout amount
	ErrBelowMinimum = errors.New("withdrawal amount is below the minimum")
	// ErrInsufficientWalletBalance is an error for a withdrawal request
	// exceeding the withdrawable wallet balance
	ErrInsufficientWalletBalance = errors.New("insufficient wallet balance")
)

// InsufficientBalanceError is an error for a debit that would drive the coin
// balance negative. It carries the required amount and the current balance.
type InsufficientBalanceError struct {
	Required int
	Current  int
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %d coins but have %d", e.Required, e.Current)
}

// InsufficientFundsError is an error for a paid download that the user cannot
// afford after exhausting the free download quota.
type InsufficientFundsError struct {
	Required int
	Current  int
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient coins: note costs %d coins but have %d", e.Required, e.Current)
}
