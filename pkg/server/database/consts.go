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

package database

const (
	// TokenTypeResetPassword is a type of a token for resetting password
	TokenTypeResetPassword = "reset_password"
)

// User roles
const (
	// RoleStudent is a regular user that browses and downloads notes
	RoleStudent = "student"
	// RoleTopper is a content creator that uploads notes
	RoleTopper = "topper"
	// RoleReviewer is a user that reviews submitted notes
	RoleReviewer = "reviewer"
	// RoleAdmin is an administrator
	RoleAdmin = "admin"
)

// Note statuses
const (
	// NoteStatusDraft is a note that has not been submitted for review
	NoteStatusDraft = "draft"
	// NoteStatusSubmitted is a note awaiting review
	NoteStatusSubmitted = "submitted"
	// NoteStatusApproved is a note approved but not yet published
	NoteStatusApproved = "approved"
	// NoteStatusPublished is a note visible to students
	NoteStatusPublished = "published"
	// NoteStatusRejected is a note rejected by a reviewer
	NoteStatusRejected = "rejected"
	// NoteStatusArchived is a note removed from circulation
	NoteStatusArchived = "archived"
)

// Transaction types
const (
	// TransactionTypeCoinEarned is a credit from engagement or revenue share
	TransactionTypeCoinEarned = "coin_earned"
	// TransactionTypeCoinSpent is a generic debit
	TransactionTypeCoinSpent = "coin_spent"
	// TransactionTypeCoinPurchased is a credit from an external coin purchase
	TransactionTypeCoinPurchased = "coin_purchased"
	// TransactionTypeDownloadFree is a download covered by the daily free quota
	TransactionTypeDownloadFree = "download_free"
	// TransactionTypeDownloadPaid is a download paid with coins
	TransactionTypeDownloadPaid = "download_paid"
	// TransactionTypeUploadReward is the reward credited on note submission
	TransactionTypeUploadReward = "upload_reward"
)

// Review task statuses
const (
	// ReviewStatusOpen is a task awaiting a decision
	ReviewStatusOpen = "open"
	// ReviewStatusChangesRequested is a task sent back to the topper
	ReviewStatusChangesRequested = "changes_requested"
	// ReviewStatusApproved is a terminal approved task
	ReviewStatusApproved = "approved"
	// ReviewStatusRejected is a terminal rejected task
	ReviewStatusRejected = "rejected"
)

// Withdrawal request statuses
const (
	// WithdrawalStatusPending is a request awaiting an admin decision
	WithdrawalStatusPending = "pending"
	// WithdrawalStatusApproved is a request approved but not yet paid out
	WithdrawalStatusApproved = "approved"
	// WithdrawalStatusRejected is a terminal rejected request
	WithdrawalStatusRejected = "rejected"
	// WithdrawalStatusSettled is a terminal paid-out request
	WithdrawalStatusSettled = "settled"
)
