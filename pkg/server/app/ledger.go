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
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/helpers"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Business constants for the coin economy
const (
	// UploadRewardCoins is the number of coins credited when a note is submitted
	UploadRewardCoins = 20
	// ViewBonusCoins is the engagement bonus for viewing a note
	ViewBonusCoins = 2
	// DailyFreeDownloads is the per-day free download quota
	DailyFreeDownloads = 3
	// MinWithdrawalAmount is the minimum payout in rupees
	MinWithdrawalAmount = 200
	// CoinsPerRupee is the conversion rate from coins to rupees
	CoinsPerRupee = 20
)

// AdjustBalance applies the given coin change to the user's balance within the
// given transaction. Credits also increase TotalEarned and debits increase
// TotalSpent. A debit is guarded against concurrent updates: it only succeeds
// if the balance covers the amount at the time the row is written, and returns
// an InsufficientBalanceError otherwise.
func (a *App) AdjustBalance(tx *gorm.DB, userID int, coinChange int) error {
	if coinChange >= 0 {
		err := tx.Model(&database.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"coin_balance": gorm.Expr("coin_balance + ?", coinChange),
				"total_earned": gorm.Expr("total_earned + ?", coinChange),
			}).Error
		if err != nil {
			return errors.Wrap(err, "crediting balance")
		}

		return nil
	}

	amount := -coinChange

	res := tx.Model(&database.User{}).Where("id = ? AND coin_balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"coin_balance": gorm.Expr("coin_balance - ?", amount),
			"total_spent":  gorm.Expr("total_spent + ?", amount),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "debiting balance")
	}
	if res.RowsAffected == 0 {
		var user database.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return errors.Wrap(err, "finding user after failed debit")
		}

		return InsufficientBalanceError{Required: amount, Current: user.CoinBalance}
	}

	return nil
}

// RecordTransaction appends an entry to the coin ledger within the given
// transaction. Ledger rows are never updated or deleted.
func (a *App) RecordTransaction(tx *gorm.DB, userID int, transactionType string, amount, coinChange int, noteID *int, description string) error {
	uuid, err := helpers.GenUUID()
	if err != nil {
		return errors.Wrap(err, "generating uuid")
	}

	t := database.Transaction{
		UUID:        uuid,
		UserID:      userID,
		Type:        transactionType,
		Amount:      amount,
		CoinChange:  coinChange,
		NoteID:      noteID,
		Description: description,
	}
	if err := tx.Create(&t).Error; err != nil {
		return errors.Wrap(err, "recording transaction")
	}

	return nil
}

// GetTransactions returns the user's ledger entries, most recent first
func (a *App) GetTransactions(userID int, page, perPage int) ([]database.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}

	var total int64
	if err := a.DB.Model(&database.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "counting transactions")
	}

	var transactions []database.Transaction
	err := a.DB.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "finding transactions")
	}

	return transactions, total, nil
}

// GrantPurchasedCoins credits coins bought outside the platform economy, such
// as an admin grant after a payment.
func (a *App) GrantPurchasedCoins(userID int, amount int, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if description == "" {
		description = "Coins purchased"
	}

	tx := a.DB.Begin()

	if err := a.AdjustBalance(tx, userID, amount); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "adjusting balance")
	}
	if err := a.RecordTransaction(tx, userID, database.TransactionTypeCoinPurchased, amount, amount, nil, description); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "recording transaction")
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "committing transaction")
	}

	return nil
}

// Wallet is a summary of a user's coin standing
type Wallet struct {
	CoinBalance       int
	TotalEarned       int
	TotalSpent        int
	WalletBalance     int
	FreeDownloadsLeft int
}

// GetWallet returns the user's wallet summary. WalletBalance is the amount in
// rupees withdrawable from lifetime earnings. FreeDownloadsLeft is projected
// to the full quota if the daily reset is due, without writing to the row.
func (a *App) GetWallet(userID int) (Wallet, error) {
	var user database.User
	if err := a.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Wallet{}, ErrNotFound
		}

		return Wallet{}, errors.Wrap(err, "finding user")
	}

	freeLeft := user.FreeDownloadsLeft
	if freeDownloadResetDue(user, a.Clock.Now()) {
		freeLeft = DailyFreeDownloads
	}

	return Wallet{
		CoinBalance:       user.CoinBalance,
		TotalEarned:       user.TotalEarned,
		TotalSpent:        user.TotalSpent,
		WalletBalance:     user.TotalEarned / CoinsPerRupee,
		FreeDownloadsLeft: freeLeft,
	}, nil
}
