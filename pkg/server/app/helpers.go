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
	"strings"
	"time"

	"github.com/notebazaar/notebazaar/pkg/server/database"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// startOfUTCDay truncates the given time to midnight UTC. Day boundaries in
// the coin economy are defined in UTC.
func startOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// freeDownloadResetDue reports whether the user's free download quota should
// be reset as of the given time
func freeDownloadResetDue(user database.User, now time.Time) bool {
	return user.LastFreeDownloadReset == nil || user.LastFreeDownloadReset.Before(startOfUTCDay(now))
}

// isUniqueViolation reports whether the error came from a unique index
// violation. Postgres and SQLite phrase the error differently.
func isUniqueViolation(err error) bool {
	if pkgErrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
