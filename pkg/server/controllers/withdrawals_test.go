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

package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/notebazaar/notebazaar/pkg/assert"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/mailer"
	"github.com/notebazaar/notebazaar/pkg/server/testutils"
	"gorm.io/gorm"
)

func setupEarnedBalance(t *testing.T, db *gorm.DB, user database.User, totalEarned int) {
	testutils.MustExec(t, db.Model(&database.User{}).Where("id = ?", user.ID).
		Update("total_earned", totalEarned), "preparing earnings")
}

func TestCreateWithdrawal(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	setupEarnedBalance(t, db, topper, 5000)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("amount", "250")
	dat.Set("bank_details", "HDFC 000111222333")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/withdrawals", dat)

	res := testutils.HTTPAuthDo(t, db, req, topper)

	assert.StatusCodeEquals(t, res, http.StatusCreated, "")

	var payload struct {
		UUID   string `json:"uuid"`
		Amount int    `json:"amount"`
		Coins  int    `json:"coins"`
		Status string `json:"status"`
	}
	testutils.MustUnmarshalJSON(t, res, &payload)

	assert.Equal(t, payload.Amount, 250, "amount mismatch")
	assert.Equal(t, payload.Coins, 250*app.CoinsPerRupee, "coins mismatch")
	assert.Equal(t, payload.Status, database.WithdrawalStatusPending, "status mismatch")

	var reqRecord database.WithdrawalRequest
	testutils.MustExec(t, db.First(&reqRecord), "finding withdrawal")
	assert.Equal(t, reqRecord.UserID, topper.ID, "user id mismatch")
	assert.Equal(t, reqRecord.BankDetails, "HDFC 000111222333", "bank details mismatch")
}

func TestCreateWithdrawalBelowMinimum(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	setupEarnedBalance(t, db, topper, 5000)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("amount", "150")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/withdrawals", dat)

	res := testutils.HTTPAuthDo(t, db, req, topper)

	assert.StatusCodeEquals(t, res, http.StatusUnprocessableEntity, "")

	var count int64
	testutils.MustExec(t, db.Model(&database.WithdrawalRequest{}).Count(&count), "counting withdrawals")
	assert.Equal(t, count, int64(0), "withdrawal count mismatch")
}

func TestCreateWithdrawalInsufficientWallet(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	// 4000 coins earned is Rs. 200 withdrawable
	setupEarnedBalance(t, db, topper, 4000)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("amount", "300")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/withdrawals", dat)

	res := testutils.HTTPAuthDo(t, db, req, topper)

	assert.StatusCodeEquals(t, res, http.StatusUnprocessableEntity, "")
}

func TestPendingWithdrawalsPermission(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	student := testutils.SetupUserData(db, "student@example.com", "pass1234", "student")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/admin/withdrawals", "")
	res := testutils.HTTPAuthDo(t, db, req, student)

	assert.StatusCodeEquals(t, res, http.StatusForbidden, "")
}

func TestApproveWithdrawal(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	admin := testutils.SetupUserData(db, "admin@example.com", "pass1234", "admin")

	withdrawal := database.WithdrawalRequest{
		UUID:   testutils.MustUUID(t),
		UserID: topper.ID,
		Amount: 250,
		Coins:  5000,
		Status: database.WithdrawalStatusPending,
	}
	testutils.MustExec(t, db.Save(&withdrawal), "preparing withdrawal")

	emailBackend := testutils.MockEmailbackendImplementation{}
	a := app.NewTest()
	a.DB = db
	a.EmailBackend = &emailBackend
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "PATCH", fmt.Sprintf("/api/v1/admin/withdrawals/%s/approve", withdrawal.UUID), "")
	res := testutils.HTTPAuthDo(t, db, req, admin)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var reqRecord database.WithdrawalRequest
	testutils.MustExec(t, db.Where("id = ?", withdrawal.ID).First(&reqRecord), "finding withdrawal")
	assert.Equal(t, reqRecord.Status, database.WithdrawalStatusApproved, "status mismatch")
	assert.Equal(t, *reqRecord.ProcessedBy, admin.ID, "processed by mismatch")

	// requester is notified
	assert.Equalf(t, len(emailBackend.Emails), 1, "email queue count mismatch")
	assert.Equal(t, emailBackend.Emails[0].TemplateType, mailer.EmailTypeWithdrawalUpdate, "email template mismatch")
	assert.DeepEqual(t, emailBackend.Emails[0].To, []string{"topper@example.com"}, "email to mismatch")
}

func TestSettleWithdrawalRequiresApproval(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	topper := testutils.SetupUserData(db, "topper@example.com", "pass1234", "topper")
	admin := testutils.SetupUserData(db, "admin@example.com", "pass1234", "admin")

	withdrawal := database.WithdrawalRequest{
		UUID:   testutils.MustUUID(t),
		UserID: topper.ID,
		Amount: 250,
		Coins:  5000,
		Status: database.WithdrawalStatusPending,
	}
	testutils.MustExec(t, db.Save(&withdrawal), "preparing withdrawal")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "PATCH", fmt.Sprintf("/api/v1/admin/withdrawals/%s/settle", withdrawal.UUID), "")
	res := testutils.HTTPAuthDo(t, db, req, admin)

	assert.StatusCodeEquals(t, res, http.StatusConflict, "")
}

func TestGrantCoins(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	student := testutils.SetupUserData(db, "student@example.com", "pass1234", "student")
	admin := testutils.SetupUserData(db, "admin@example.com", "pass1234", "admin")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("user_uuid", student.UUID)
	dat.Set("amount", "200")
	dat.Set("description", "Coin pack purchase")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/admin/coins/grant", dat)

	res := testutils.HTTPAuthDo(t, db, req, admin)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload struct {
		CoinBalance int `json:"coin_balance"`
	}
	testutils.MustUnmarshalJSON(t, res, &payload)
	assert.Equal(t, payload.CoinBalance, 200, "coin balance mismatch")

	var transaction database.Transaction
	testutils.MustExec(t, db.First(&transaction), "finding transaction")
	assert.Equal(t, transaction.Type, database.TransactionTypeCoinPurchased, "transaction type mismatch")
	assert.Equal(t, transaction.CoinChange, 200, "coin change mismatch")
}

func TestGrantCoinsPermission(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	student := testutils.SetupUserData(db, "student@example.com", "pass1234", "student")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("user_uuid", student.UUID)
	dat.Set("amount", "200")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/admin/coins/grant", dat)

	res := testutils.HTTPAuthDo(t, db, req, student)

	assert.StatusCodeEquals(t, res, http.StatusForbidden, "")
}
