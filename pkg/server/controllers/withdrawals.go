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
	"net/http"

	"github.com/gorilla/mux"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/context"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/notebazaar/notebazaar/pkg/server/permissions"
	"github.com/notebazaar/notebazaar/pkg/server/presenters"
)

// NewWithdrawals creates a new Withdrawals controller
func NewWithdrawals(app *app.App) *Withdrawals {
	return &Withdrawals{
		app: app,
	}
}

// Withdrawals is a controller for payout requests
type Withdrawals struct {
	app *app.App
}

// WithdrawalForm is the form data for requesting a withdrawal
type WithdrawalForm struct {
	Amount      int    `json:"amount" schema:"amount"`
	BankDetails string `json:"bank_details" schema:"bank_details"`
	UpiID       string `json:"upi_id" schema:"upi_id"`
}

// Create handles POST /withdrawals
func (c *Withdrawals) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	var form WithdrawalForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	req, err := c.app.CreateWithdrawal(*user, app.CreateWithdrawalParams{
		Amount:      form.Amount,
		BankDetails: form.BankDetails,
		UpiID:       form.UpiID,
	})
	if err != nil {
		handleJSONError(w, err, "creating withdrawal")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentWithdrawalRequest(req))
}

// Index handles GET /withdrawals. It lists the authenticated user's payout
// requests.
func (c *Withdrawals) Index(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	reqs, err := c.app.GetWithdrawals(user.ID)
	if err != nil {
		handleJSONError(w, err, "getting withdrawals")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentWithdrawalRequests(reqs))
}

// Pending handles GET /admin/withdrawals
func (c *Withdrawals) Pending(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if !permissions.ManageWithdrawals(user) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "admin access required"})
		return
	}

	reqs, err := c.app.GetPendingWithdrawals()
	if err != nil {
		handleJSONError(w, err, "getting pending withdrawals")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentWithdrawalRequests(reqs))
}

func (c *Withdrawals) decide(w http.ResponseWriter, r *http.Request, decide func(uuid string, admin database.User) (database.WithdrawalRequest, error)) {
	user := context.User(r.Context())
	if !permissions.ManageWithdrawals(user) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "admin access required"})
		return
	}

	vars := mux.Vars(r)
	req, err := decide(vars["withdrawalUUID"], *user)
	if err != nil {
		handleJSONError(w, err, "processing withdrawal")
		return
	}

	c.notifyRequester(req)

	respondJSON(w, http.StatusOK, presenters.PresentWithdrawalRequest(req))
}

// notifyRequester emails the requesting user about the status change. Email
// failures do not fail the request.
func (c *Withdrawals) notifyRequester(req database.WithdrawalRequest) {
	var requester database.User
	if err := c.app.DB.Where("id = ?", req.UserID).First(&requester).Error; err != nil {
		log.ErrorWrap(err, "finding withdrawal requester")
		return
	}

	if err := c.app.SendWithdrawalUpdateEmail(requester, req); err != nil {
		log.ErrorWrap(err, "sending withdrawal update email")
	}
}

// Approve handles PATCH /admin/withdrawals/{withdrawalUUID}/approve
func (c *Withdrawals) Approve(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.app.ApproveWithdrawal)
}

// Reject handles PATCH /admin/withdrawals/{withdrawalUUID}/reject
func (c *Withdrawals) Reject(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.app.RejectWithdrawal)
}

// Settle handles PATCH /admin/withdrawals/{withdrawalUUID}/settle
func (c *Withdrawals) Settle(w http.ResponseWriter, r *http.Request) {
	c.decide(w, r, c.app.SettleWithdrawal)
}

// GrantForm is the form data for granting purchased coins
type GrantForm struct {
	UserUUID    string `json:"user_uuid" schema:"user_uuid"`
	Amount      int    `json:"amount" schema:"amount"`
	Description string `json:"description" schema:"description"`
}

// Grant handles POST /admin/coins/grant
func (c *Withdrawals) Grant(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if !permissions.ManageWithdrawals(user) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "admin access required"})
		return
	}

	var form GrantForm
	if err := parseRequestData(r, &form); err != nil {
		handleJSONError(w, err, "parsing payload")
		return
	}

	target, err := c.app.GetUserByUUID(form.UserUUID)
	if err != nil {
		handleJSONError(w, err, "finding user")
		return
	}

	if err := c.app.GrantPurchasedCoins(target.ID, form.Amount, form.Description); err != nil {
		handleJSONError(w, err, "granting coins")
		return
	}

	wallet, err := c.app.GetWallet(target.ID)
	if err != nil {
		handleJSONError(w, err, "getting wallet")
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentWallet(wallet))
}
