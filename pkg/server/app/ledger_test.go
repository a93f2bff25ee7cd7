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
	"testing"

	"github.com/notebazaar/notebazaar/pkg/assert"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/testutils"
	"github.com/pkg/errors"
)

func TestAdjustBalance(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", database.RoleStudent)

	a := NewTest()
	a.DB = db

	if err := a.AdjustBalance(db, user.ID, 50); err != nil {
		t.Fatal(errors.Wrap(err, "crediting"))
	}
	if err := a.AdjustBalance(db, user.ID, -20); err != nil {
		t.Fatal(errors.Wrap(err, "debiting"))
	}

	var record database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&record), "finding user")

	assert.Equal(t, record.CoinBalance, 30, "balance mismatch")
	assert.Equal(t, record.TotalEarned, 50, "total earned mismatch")
	assert.Equal(t, record.TotalSpent, 20, "total spent mismatch")
}

func TestAdjustBalance_InsufficientBalance(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", database.RoleStudent)
	testutils.MustExec(t, db.Model(&user).Update("coin_balance", 10), "preparing balance")

	a := NewTest()
	a.DB = db

	err := a.AdjustBalance(db, user.ID, -25)

	var balanceErr InsufficientBalanceError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("expected InsufficientBalanceError but got %v", err)
	}
	assert.Equal(t, balanceErr.Required, 25, "Required mismatch")
	assert.Equal(t, balanceErr.Current, 10, "Current mismatch")

	var record database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&record), "finding user")
	assert.Equal(t, record.CoinBalance, 10, "balance should be unchanged")
	assert.Equal(t, record.TotalSpent, 0, "total spent should be unchanged")
}

func TestGrantPurchasedCoins(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", database.RoleStudent)

	a := NewTest()
	a.DB = db

	if err := a.GrantPurchasedCoins(user.ID, 100, "Coin pack purchase"); err != nil {
		t.Fatal(errors.Wrap(err, "granting coins"))
	}

	var record database.User
	var transaction database.Transaction
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&record), "finding user")
	testutils.MustExec(t, db.Where("user_id = ?", user.ID).First(&transaction), "finding transaction")

	assert.Equal(t, record.CoinBalance, 100, "balance mismatch")
	assert.Equal(t, transaction.Type, database.TransactionTypeCoinPurchased, "transaction type mismatch")
	assert.Equal(t, transaction.CoinChange, 100, "transaction coin change mismatch")

	if err := a.GrantPurchasedCoins(user.ID, 0, ""); err == nil {
		t.Fatal("expected an error for a non-positive amount")
	}
}

func TestLedgerConservation(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", database.RoleStudent)

	a := NewTest()
	a.DB = db

	// a mix of credits and debits through the transactional helpers
	changes := []int{50, -20, 35, -5}
	for idx, change := range changes {
		tx := a.DB.Begin()
		if err := a.AdjustBalance(tx, user.ID, change); err != nil {
			t.Fatal(errors.Wrapf(err, "adjusting balance for change %d", idx))
		}
		transactionType := database.TransactionTypeCoinEarned
		amount := change
		if change < 0 {
			transactionType = database.TransactionTypeCoinSpent
			amount = -change
		}
		if err := a.RecordTransaction(tx, user.ID, transactionType, amount, change, nil, "test entry"); err != nil {
			t.Fatal(errors.Wrapf(err, "recording transaction for change %d", idx))
		}
		if err := tx.Commit().Error; err != nil {
			t.Fatal(errors.Wrapf(err, "committing change %d", idx))
		}
	}

	var record database.User
	testutils.MustExec(t, db.Where("id = ?", user.ID).First(&record), "finding user")

	// the balance equals the sum of ledger entries
	var sum int
	testutils.MustExec(t, db.Model(&database.Transaction{}).Where("user_id = ?", user.ID).Select("COALESCE(SUM(coin_change), 0)").Scan(&sum), "summing ledger")

	assert.Equal(t, record.CoinBalance, 60, "balance mismatch")
	assert.Equal(t, sum, record.CoinBalance, "ledger does not reconcile with balance")
	assert.Equal(t, record.TotalEarned-record.TotalSpent, record.CoinBalance, "totals do not reconcile with balance")
}

func TestGetTransactions(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", database.RoleStudent)
	other := testutils.SetupUserData(db, "bob@example.com", "pass1234", database.RoleStudent)

	a := NewTest()
	a.DB = db

	for i := 0; i < 3; i++ {
		if err := a.RecordTransaction(db, user.ID, database.TransactionTypeCoinEarned, 2, 2, nil, "bonus"); err != nil {
			t.Fatal(errors.Wrap(err, "recording transaction"))
		}
	}
	if err := a.RecordTransaction(db, other.ID, database.TransactionTypeCoinEarned, 2, 2, nil, "bonus"); err != nil {
		t.Fatal(errors.Wrap(err, "recording other transaction"))
	}

	transactions, total, err := a.GetTransactions(user.ID, 1, 2)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting transactions"))
	}

	assert.Equal(t, total, int64(3), "total mismatch")
	assert.Equal(t, len(transactions), 2, "page size mismatch")
	for _, transaction := range transactions {
		assert.Equal(t, transaction.UserID, user.ID, "transaction user mismatch")
	}
}

func TestGetWallet(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", database.RoleStudent)
	testutils.MustExec(t, db.Model(&user).Updates(map[string]interface{}{
		"coin_balance": 130,
		"total_earned": 450,
		"total_spent":  320,
	}), "preparing user")

	a := NewTest()
	a.DB = db

	wallet, err := a.GetWallet(user.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting wallet"))
	}

	assert.Equal(t, wallet.CoinBalance, 130, "CoinBalance mismatch")
	assert.Equal(t, wallet.TotalEarned, 450, "TotalEarned mismatch")
	assert.Equal(t, wallet.TotalSpent, 320, "TotalSpent mismatch")
	// 450 coins earned = Rs. 22, rounded down
	assert.Equal(t, wallet.WalletBalance, 22, "WalletBalance mismatch")
	// the daily quota is projected as reset without writing to the row
	assert.Equal(t, wallet.FreeDownloadsLeft, DailyFreeDownloads, "FreeDownloadsLeft mismatch")

	if _, err := a.GetWallet(99999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound but got %v", err)
	}
}
