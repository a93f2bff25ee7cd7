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

// Transaction is a result of PresentTransaction
type Transaction struct {
	UUID        string    `json:"uuid"`
	CreatedAt   time.Time `json:"created_at"`
	Type        string    `json:"type"`
	Amount      int       `json:"amount"`
	CoinChange  int       `json:"coin_change"`
	Description string    `json:"description"`
}

// PresentTransaction presents a ledger entry
func PresentTransaction(transaction database.Transaction) Transaction {
	return Transaction{
		UUID:        transaction.UUID,
		CreatedAt:   FormatTS(transaction.CreatedAt),
		Type:        transaction.Type,
		Amount:      transaction.Amount,
		CoinChange:  transaction.CoinChange,
		Description: transaction.Description,
	}
}

// PresentTransactions presents ledger entries
func PresentTransactions(transactions []database.Transaction) []Transaction {
	ret := []Transaction{}

	for _, transaction := range transactions {
		ret = append(ret, PresentTransaction(transaction))
	}

	return ret
}
