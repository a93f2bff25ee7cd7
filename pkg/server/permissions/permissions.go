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

// Package permissions provides role-based access checks
package permissions

import (
	"github.com/notebazaar/notebazaar/pkg/server/database"
)

// UploadNotes checks if the given user may upload notes
func UploadNotes(user *database.User) bool {
	if user == nil {
		return false
	}

	return user.Role == database.RoleTopper || user.Role == database.RoleAdmin
}

// ReviewNotes checks if the given user may decide review tasks
func ReviewNotes(user *database.User) bool {
	if user == nil {
		return false
	}

	return user.Role == database.RoleReviewer || user.Role == database.RoleAdmin
}

// ManageWithdrawals checks if the given user may process withdrawal requests
func ManageWithdrawals(user *database.User) bool {
	if user == nil {
		return false
	}

	return user.Role == database.RoleAdmin
}

// ViewNote checks if the given user may view the given note. Published notes
// are visible to everyone; other statuses only to the owner and reviewers.
func ViewNote(user *database.User, note database.Note) bool {
	if note.Status == database.NoteStatusPublished {
		return true
	}
	if user == nil {
		return false
	}

	return user.ID == note.TopperID || ReviewNotes(user)
}
