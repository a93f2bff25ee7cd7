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

// CreateWithdrawalParams are the parameters for requesting a withdrawal
type CreateWithdrawalParams struct {
	Amount      int
	BankDetails string
	UpiID       string
}

// CreateWithdrawal files a payout request for the given amount in rupees. The
// amount must meet the minimum and must not exceed the wallet balance derived
// from lifetime earnings. Filing a request does not move coins; coins are the
// admin's concern at settlement time.
func (a *App) CreateWithdrawal(user database.User, p CreateWithdrawalParams) (database.WithdrawalRequest, error) {
	if p.Amount < MinWithdrawalAmount {
		return database.WithdrawalRequest{}, ErrBelowMinimum
	}

	var current database.User
	if err := a.DB.Where("id = ?", user.ID).First(&current).Error; err != nil {
		return database.WithdrawalRequest{}, errors.Wrap(err, "finding user")
	}

	walletBalance := current.TotalEarned / CoinsPerRupee
	if p.Amount > walletBalance {
		return database.WithdrawalRequest{}, ErrInsufficientWalletBalance
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.WithdrawalRequest{}, errors.Wrap(err, "generating uuid")
	}

	req := database.WithdrawalRequest{
		UUID:        uuid,
		UserID:      user.ID,
		Amount:      p.Amount,
		Coins:       p.Amount * CoinsPerRupee,
		BankDetails: p.BankDetails,
		UpiID:       p.UpiID,
		Status:      database.WithdrawalStatusPending,
	}
	if err := a.DB.Create(&req).Error; err != nil {
		return database.WithdrawalRequest{}, errors.Wrap(err, "creating withdrawal request")
	}

	return req, nil
}

// GetWithdrawals returns the user's withdrawal requests, most recent first
func (a *App) GetWithdrawals(userID int) ([]database.WithdrawalRequest, error) {
	var reqs []database.WithdrawalRequest
	err := a.DB.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding withdrawal requests")
	}

	return reqs, nil
}

// GetPendingWithdrawals returns all requests awaiting an admin decision,
// oldest first
func (a *App) GetPendingWithdrawals() ([]database.WithdrawalRequest, error) {
	var reqs []database.WithdrawalRequest
	err := a.DB.Where("status = ?", database.WithdrawalStatusPending).
		Order("created_at ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding pending withdrawal requests")
	}

	return reqs, nil
}

// transitionWithdrawal moves the request with the given UUID from one status
// to another, stamping the deciding admin. The guard on the current status
// makes concurrent decisions mutually exclusive.
func (a *App) transitionWithdrawal(uuid string, from, to string, admin database.User) (database.WithdrawalRequest, error) {
	var req database.WithdrawalRequest
	err := a.DB.Where("uuid = ?", uuid).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.WithdrawalRequest{}, ErrNotFound
	}
	if err != nil {
		return database.WithdrawalRequest{}, errors.Wrap(err, "finding withdrawal request")
	}

	now := a.Clock.Now()
	res := a.DB.Model(&database.WithdrawalRequest{}).
		Where("id = ? AND status = ?", req.ID, from).
		Updates(map[string]interface{}{
			"status":       to,
			"processed_by": admin.ID,
			"processed_at": now,
		})
	if res.Error != nil {
		return database.WithdrawalRequest{}, errors.Wrap(res.Error, "updating withdrawal request")
	}
	if res.RowsAffected == 0 {
		return database.WithdrawalRequest{}, ErrInvalidTransition
	}

	req.Status = to
	req.ProcessedBy = &admin.ID
	req.ProcessedAt = &now

	return req, nil
}

// ApproveWithdrawal moves a pending request to approved
func (a *App) ApproveWithdrawal(uuid string, admin database.User) (database.WithdrawalRequest, error) {
	return a.transitionWithdrawal(uuid, database.WithdrawalStatusPending, database.WithdrawalStatusApproved, admin)
}

// RejectWithdrawal moves a pending request to rejected
func (a *App) RejectWithdrawal(uuid string, admin database.User) (database.WithdrawalRequest, error) {
	return a.transitionWithdrawal(uuid, database.WithdrawalStatusPending, database.WithdrawalStatusRejected, admin)
}

// SettleWithdrawal marks an approved request as paid out
func (a *App) SettleWithdrawal(uuid string, admin database.User) (database.WithdrawalRequest, error) {
	return a.transitionWithdrawal(uuid, database.WithdrawalStatusApproved, database.WithdrawalStatusSettled, admin)
}
