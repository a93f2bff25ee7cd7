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

	"github.com/notebazaar/notebazaar/pkg/server/database"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordView records that the user viewed the note. The view counter always
// increments. The view bonus is credited at most once per UTC day per
// (viewer, note) pair, and never for the topper's own notes. It returns the
// number of coins earned by this view.
func (a *App) RecordView(user database.User, note database.Note) (int, error) {
	now := a.Clock.Now()

	tx := a.DB.Begin()

	err := tx.Model(&database.Note{}).Where("id = ?", note.ID).
		Update("views_count", gorm.Expr("views_count + 1")).Error
	if err != nil {
		tx.Rollback()
		return 0, pkgErrors.Wrap(err, "incrementing view count")
	}

	coinsEarned := 0

	if user.ID != note.TopperID {
		// Lock the viewer row so that concurrent first views of the day cannot
		// both pass the rewarded-view count below. SQLite ignores the locking
		// clause; it allows a single writer at a time.
		var viewer database.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", user.ID).First(&viewer).Error
		if err != nil {
			tx.Rollback()
			return 0, pkgErrors.Wrap(err, "locking viewer")
		}

		var count int64
		err = tx.Model(&database.NoteView{}).
			Where("user_id = ? AND note_id = ? AND coins_earned > 0 AND viewed_at >= ?", user.ID, note.ID, startOfUTCDay(now)).
			Count(&count).Error
		if err != nil {
			tx.Rollback()
			return 0, pkgErrors.Wrap(err, "counting rewarded views")
		}

		if count == 0 {
			coinsEarned = ViewBonusCoins

			if err := a.AdjustBalance(tx, user.ID, coinsEarned); err != nil {
				tx.Rollback()
				return 0, pkgErrors.Wrap(err, "crediting view bonus")
			}

			description := fmt.Sprintf("Earned %d coins for viewing notes", coinsEarned)
			if err := a.RecordTransaction(tx, user.ID, database.TransactionTypeCoinEarned, 0, coinsEarned, &note.ID, description); err != nil {
				tx.Rollback()
				return 0, pkgErrors.Wrap(err, "recording view bonus")
			}
		}
	}

	view := database.NoteView{
		UserID:      user.ID,
		NoteID:      note.ID,
		CoinsEarned: coinsEarned,
		ViewedAt:    now,
	}
	if err := tx.Create(&view).Error; err != nil {
		tx.Rollback()
		return 0, pkgErrors.Wrap(err, "creating note view")
	}

	if err := tx.Commit().Error; err != nil {
		return 0, pkgErrors.Wrap(err, "committing transaction")
	}

	return coinsEarned, nil
}

// ToggleLike likes the note if the user has not liked it, and unlikes it
// otherwise. It returns whether the note is liked after the call.
func (a *App) ToggleLike(user database.User, note database.Note) (bool, error) {
	tx := a.DB.Begin()

	// The counter moves only when this request changed a row, so concurrent
	// toggles cannot drive likes_count out of sync with the like rows.
	res := tx.Where("user_id = ? AND note_id = ?", user.ID, note.ID).Delete(&database.NoteLike{})
	if res.Error != nil {
		tx.Rollback()
		return false, pkgErrors.Wrap(res.Error, "deleting like")
	}
	if res.RowsAffected > 0 {
		err := tx.Model(&database.Note{}).Where("id = ?", note.ID).
			Update("likes_count", gorm.Expr("likes_count - 1")).Error
		if err != nil {
			tx.Rollback()
			return false, pkgErrors.Wrap(err, "decrementing like count")
		}

		if err := tx.Commit().Error; err != nil {
			return false, pkgErrors.Wrap(err, "committing transaction")
		}

		return false, nil
	}

	like := database.NoteLike{UserID: user.ID, NoteID: note.ID}
	if err := tx.Create(&like).Error; err != nil {
		tx.Rollback()

		// A concurrent request inserted the like first
		if isUniqueViolation(err) {
			return true, nil
		}

		return false, pkgErrors.Wrap(err, "creating like")
	}
	err := tx.Model(&database.Note{}).Where("id = ?", note.ID).
		Update("likes_count", gorm.Expr("likes_count + 1")).Error
	if err != nil {
		tx.Rollback()
		return false, pkgErrors.Wrap(err, "incrementing like count")
	}

	if err := tx.Commit().Error; err != nil {
		return false, pkgErrors.Wrap(err, "committing transaction")
	}

	return true, nil
}

// DownloadResult is the outcome of a download request
type DownloadResult struct {
	// AlreadyDownloaded indicates that the user had downloaded the note before
	// and no charge was made
	AlreadyDownloaded bool
	// UsedFreeDownload indicates that the download consumed the free quota
	UsedFreeDownload bool
	// CoinsSpent is the number of coins the download cost
	CoinsSpent int
	// FreeDownloadsLeft is the remaining free quota after the download
	FreeDownloadsLeft int
	// FileURL is the location of the note file
	FileURL string
}

// DownloadNote grants the user access to the note file. A repeat download is
// free and makes no ledger entries. Otherwise the download consumes the daily
// free quota if any is left, and is paid with coins if not. A paid download
// credits the topper half the price, rounded down. All writes of a single
// download commit atomically.
func (a *App) DownloadNote(user database.User, note database.Note) (DownloadResult, error) {
	var existing database.Download
	err := a.DB.Where("student_id = ? AND note_id = ?", user.ID, note.ID).First(&existing).Error
	if err == nil {
		return DownloadResult{
			AlreadyDownloaded: true,
			UsedFreeDownload:  existing.UsedFreeDownload,
			FileURL:           note.FileURL,
		}, nil
	}
	if !pkgErrors.Is(err, gorm.ErrRecordNotFound) {
		return DownloadResult{}, pkgErrors.Wrap(err, "finding existing download")
	}

	now := a.Clock.Now()

	tx := a.DB.Begin()

	var current database.User
	if err := tx.Where("id = ?", user.ID).First(&current).Error; err != nil {
		tx.Rollback()
		return DownloadResult{}, pkgErrors.Wrap(err, "finding user")
	}

	// Lazily reset the daily quota at the first download of a new UTC day
	if freeDownloadResetDue(current, now) {
		err := tx.Model(&database.User{}).Where("id = ?", current.ID).
			Updates(map[string]interface{}{
				"free_downloads_left":      DailyFreeDownloads,
				"last_free_download_reset": now,
			}).Error
		if err != nil {
			tx.Rollback()
			return DownloadResult{}, pkgErrors.Wrap(err, "resetting free downloads")
		}

		current.FreeDownloadsLeft = DailyFreeDownloads
	}

	result := DownloadResult{FileURL: note.FileURL}

	if current.FreeDownloadsLeft > 0 {
		res := tx.Model(&database.User{}).
			Where("id = ? AND free_downloads_left > 0", current.ID).
			Update("free_downloads_left", gorm.Expr("free_downloads_left - 1"))
		if res.Error != nil {
			tx.Rollback()
			return DownloadResult{}, pkgErrors.Wrap(res.Error, "consuming free download")
		}

		if res.RowsAffected > 0 {
			result.UsedFreeDownload = true
			result.FreeDownloadsLeft = current.FreeDownloadsLeft - 1

			description := fmt.Sprintf("Downloaded \"%s\" using free download", note.Title)
			if err := a.RecordTransaction(tx, current.ID, database.TransactionTypeDownloadFree, 0, 0, &note.ID, description); err != nil {
				tx.Rollback()
				return DownloadResult{}, pkgErrors.Wrap(err, "recording free download")
			}
		}
	}

	if !result.UsedFreeDownload {
		if err := a.AdjustBalance(tx, current.ID, -note.Price); err != nil {
			tx.Rollback()

			var insufficientErr InsufficientBalanceError
			if pkgErrors.As(err, &insufficientErr) {
				return DownloadResult{}, InsufficientFundsError{
					Required: insufficientErr.Required,
					Current:  insufficientErr.Current,
				}
			}

			return DownloadResult{}, pkgErrors.Wrap(err, "debiting download price")
		}

		result.CoinsSpent = note.Price
		result.FreeDownloadsLeft = current.FreeDownloadsLeft

		description := fmt.Sprintf("Downloaded \"%s\" for %d coins", note.Title, note.Price)
		if err := a.RecordTransaction(tx, current.ID, database.TransactionTypeDownloadPaid, note.Price, -note.Price, &note.ID, description); err != nil {
			tx.Rollback()
			return DownloadResult{}, pkgErrors.Wrap(err, "recording paid download")
		}

		share := note.Price / 2
		if share > 0 {
			if err := a.AdjustBalance(tx, note.TopperID, share); err != nil {
				tx.Rollback()
				return DownloadResult{}, pkgErrors.Wrap(err, "crediting topper share")
			}

			shareDescription := fmt.Sprintf("Earned %d coins from \"%s\" download", share, note.Title)
			if err := a.RecordTransaction(tx, note.TopperID, database.TransactionTypeCoinEarned, share, share, &note.ID, shareDescription); err != nil {
				tx.Rollback()
				return DownloadResult{}, pkgErrors.Wrap(err, "recording topper share")
			}
		}
	}

	download := database.Download{
		StudentID:        current.ID,
		NoteID:           note.ID,
		CoinsSpent:       result.CoinsSpent,
		UsedFreeDownload: result.UsedFreeDownload,
		DownloadedAt:     now,
	}
	if err := tx.Create(&download).Error; err != nil {
		tx.Rollback()

		// A concurrent request downloaded the note first. The rollback above
		// discards this request's charge.
		if isUniqueViolation(err) {
			var winner database.Download
			if err := a.DB.Where("student_id = ? AND note_id = ?", current.ID, note.ID).First(&winner).Error; err != nil {
				return DownloadResult{}, pkgErrors.Wrap(err, "finding existing download")
			}

			return DownloadResult{
				AlreadyDownloaded: true,
				UsedFreeDownload:  winner.UsedFreeDownload,
				FileURL:           note.FileURL,
			}, nil
		}

		return DownloadResult{}, pkgErrors.Wrap(err, "creating download")
	}

	err = tx.Model(&database.Note{}).Where("id = ?", note.ID).
		Update("downloads_count", gorm.Expr("downloads_count + 1")).Error
	if err != nil {
		tx.Rollback()
		return DownloadResult{}, pkgErrors.Wrap(err, "incrementing download count")
	}

	if err := tx.Commit().Error; err != nil {
		return DownloadResult{}, pkgErrors.Wrap(err, "committing transaction")
	}

	return result, nil
}

// GetDownloads returns the notes the user has downloaded, most recent first
func (a *App) GetDownloads(userID int) ([]database.Download, error) {
	var downloads []database.Download
	err := a.DB.Where("student_id = ?", userID).
		Order("downloaded_at DESC, id DESC").
		Find(&downloads).Error
	if err != nil {
		return nil, pkgErrors.Wrap(err, "finding downloads")
	}

	return downloads, nil
}
