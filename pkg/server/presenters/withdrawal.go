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

package presenters

import (
	"time"

	"github.com/notebazaar/notebazaar/pkg/server/database"
)

// WithdrawalRequest is a result of PresentWithdrawalRequest. Bank details and
// UPI handles are never presented.
type WithdrawalRequest struct {
	UUID        string     `json:"uuid"`
	CreatedAt   time.Time  `json:"created_at"`
	Amount      int        `json:"amount"`
	Coins       int        `json:"coins"`
	Status      string     `json:"status"`
	ProcessedAt *time.Time `json:"processed_at"`
}

// PresentWithdrawalRequest presents a withdrawal request
func PresentWithdrawalRequest(req database.WithdrawalRequest) WithdrawalRequest {
	return WithdrawalRequest{
		UUID:        req.UUID,
		CreatedAt:   FormatTS(req.CreatedAt),
		Amount:      req.Amount,
		Coins:       req.Coins,
		Status:      req.Status,
		ProcessedAt: formatTSPtr(req.ProcessedAt),
	}
}

// PresentWithdrawalRequests presents withdrawal requests
func PresentWithdrawalRequests(reqs []database.WithdrawalRequest) []WithdrawalRequest {
	ret := []WithdrawalRequest{}

	for _, req := range reqs {
		ret = append(ret, PresentWithdrawalRequest(req))
	}

	return ret
}
