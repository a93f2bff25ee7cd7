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

	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/database"
)

// User is a result of PresentUser
type User struct {
	UUID       string    `json:"uuid"`
	CreatedAt  time.Time `json:"created_at"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Reputation int       `json:"reputation"`
}

// PresentUser presents user
func PresentUser(user database.User) User {
	return User{
		UUID:       user.UUID,
		CreatedAt:  FormatTS(user.CreatedAt),
		Email:      user.Email.String,
		Name:       user.Name,
		Role:       user.Role,
		Reputation: user.Reputation,
	}
}

// LeaderboardEntry is a ranked topper for PresentLeaderboard
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	TotalEarned int    `json:"total_earned"`
	Reputation  int    `json:"reputation"`
}

// PresentLeaderboard presents ranked toppers
func PresentLeaderboard(users []database.User) []LeaderboardEntry {
	ret := []LeaderboardEntry{}

	for idx, user := range users {
		ret = append(ret, LeaderboardEntry{
			Rank:        idx + 1,
			UUID:        user.UUID,
			Name:        user.Name,
			TotalEarned: user.TotalEarned,
			Reputation:  user.Reputation,
		})
	}

	return ret
}

// Wallet is a result of PresentWallet
type Wallet struct {
	CoinBalance       int `json:"coin_balance"`
	TotalEarned       int `json:"total_earned"`
	TotalSpent        int `json:"total_spent"`
	WalletBalance     int `json:"wallet_balance"`
	FreeDownloadsLeft int `json:"free_downloads_left"`
}

// PresentWallet presents a wallet summary
func PresentWallet(wallet app.Wallet) Wallet {
	return Wallet{
		CoinBalance:       wallet.CoinBalance,
		TotalEarned:       wallet.TotalEarned,
		TotalSpent:        wallet.TotalSpent,
		WalletBalance:     wallet.WalletBalance,
		FreeDownloadsLeft: wallet.FreeDownloadsLeft,
	}
}
