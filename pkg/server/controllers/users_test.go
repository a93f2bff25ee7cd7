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
	"os"
	"testing"

	"github.com/notebazaar/notebazaar/pkg/assert"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/mailer"
	"github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/notebazaar/notebazaar/pkg/server/testutils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "TEST")
	os.Exit(m.Run())
}

func assertSessionResp(t *testing.T, db *gorm.DB, res *http.Response) {
	var session database.Session
	testutils.MustExec(t, db.First(&session), "getting session")

	c := testutils.GetCookieByName(res.Cookies(), middleware.SessionCookieName)
	assert.Equal(t, c.Value, session.Key, "session key mismatch")
	assert.Equal(t, c.Path, "/", "session path mismatch")
	assert.Equal(t, c.HttpOnly, true, "session HttpOnly mismatch")
}

func TestRegister(t *testing.T) {
	testCases := []struct {
		email string
		role  string
	}{
		{
			email: "alice@example.com",
			role:  "student",
		},
		{
			email: "bob@example.com",
			role:  "topper",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("register %s as %s", tc.email, tc.role), func(t *testing.T) {
			db := testutils.InitMemoryDB(t)

			emailBackend := testutils.MockEmailbackendImplementation{}
			a := app.NewTest()
			a.EmailBackend = &emailBackend
			a.DB = db
			server := MustNewServer(t, &a)
			defer server.Close()

			dat := url.Values{}
			dat.Set("email", tc.email)
			dat.Set("password", "pass1234")
			dat.Set("password_confirmation", "pass1234")
			dat.Set("name", "Test User")
			dat.Set("role", tc.role)
			req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/register", dat)

			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusCreated, "")

			var user database.User
			testutils.MustExec(t, db.Where("email = ?", tc.email).First(&user), "finding user")
			assert.Equal(t, user.Role, tc.role, "Role mismatch")
			assert.Equal(t, user.CoinBalance, 0, "CoinBalance mismatch")
			assert.Equal(t, user.FreeDownloadsLeft, app.DailyFreeDownloads, "FreeDownloadsLeft mismatch")
			passwordErr := bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte("pass1234"))
			assert.Equal(t, passwordErr, nil, "Password mismatch")

			assert.Equalf(t, len(emailBackend.Emails), 1, "email queue count mismatch")
			assert.Equal(t, emailBackend.Emails[0].TemplateType, mailer.EmailTypeWelcome, "email template mismatch")
			assert.DeepEqual(t, emailBackend.Emails[0].To, []string{tc.email}, "email to mismatch")

			// registering signs the user in
			assertSessionResp(t, db, res)
		})
	}
}

func TestRegisterError(t *testing.T) {
	testCases := []struct {
		name string
		dat  url.Values
	}{
		{
			name: "missing email",
			dat: url.Values{
				"password":              {"pass1234"},
				"password_confirmation": {"pass1234"},
				"role":                  {"student"},
			},
		},
		{
			name: "password too short",
			dat: url.Values{
				"email":                 {"alice@example.com"},
				"password":              {"short"},
				"password_confirmation": {"short"},
				"role":                  {"student"},
			},
		},
		{
			name: "password confirmation mismatch",
			dat: url.Values{
				"email":                 {"alice@example.com"},
				"password":              {"pass1234"},
				"password_confirmation": {"pass5678"},
				"role":                  {"student"},
			},
		},
		{
			name: "privileged role",
			dat: url.Values{
				"email":                 {"alice@example.com"},
				"password":              {"pass1234"},
				"password_confirmation": {"pass1234"},
				"role":                  {"admin"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)

			a := app.NewTest()
			a.DB = db
			server := MustNewServer(t, &a)
			defer server.Close()

			req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/register", tc.dat)

			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")

			var userCount int64
			testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting users")
			assert.Equal(t, userCount, int64(0), "user count mismatch")
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	testutils.SetupUserData(db, "alice@example.com", "pass1234", "student")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("email", "alice@example.com")
	dat.Set("password", "pass1234")
	dat.Set("password_confirmation", "pass1234")
	dat.Set("role", "student")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/register", dat)

	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusConflict, "")
}

func TestRegisterDisabled(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	a.DisableRegistration = true
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("email", "alice@example.com")
	dat.Set("password", "pass1234")
	dat.Set("password_confirmation", "pass1234")
	dat.Set("role", "student")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/register", dat)

	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusNotFound, "")

	var userCount int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting users")
	assert.Equal(t, userCount, int64(0), "user count mismatch")
}

func TestSignin(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	testutils.SetupUserData(db, "alice@example.com", "pass1234", "student")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	dat := url.Values{}
	dat.Set("email", "alice@example.com")
	dat.Set("password", "pass1234")
	req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/signin", dat)

	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload struct {
		Key string `json:"key"`
	}
	testutils.MustUnmarshalJSON(t, res, &payload)
	assert.NotEqual(t, payload.Key, "", "session key should not be empty")

	assertSessionResp(t, db, res)
}

func TestSigninFailure(t *testing.T) {
	testCases := []struct {
		name     string
		email    string
		password string
	}{
		{
			name:     "wrong password",
			email:    "alice@example.com",
			password: "wrongpass",
		},
		{
			name:     "nonexistent account",
			email:    "nobody@example.com",
			password: "pass1234",
		},
		{
			name:     "missing credentials",
			email:    "",
			password: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			testutils.SetupUserData(db, "alice@example.com", "pass1234", "student")

			a := app.NewTest()
			a.DB = db
			server := MustNewServer(t, &a)
			defer server.Close()

			dat := url.Values{}
			dat.Set("email", tc.email)
			dat.Set("password", tc.password)
			req := testutils.MakeFormReq(server.URL, "POST", "/api/v1/signin", dat)

			res := testutils.HTTPDo(t, req)

			assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")

			var sessionCount int64
			testutils.MustExec(t, db.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
			assert.Equal(t, sessionCount, int64(0), "session count mismatch")
		})
	}
}

func TestSignout(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", "student")
	session := testutils.SetupSession(db, user)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "POST", "/api/v1/signout", "")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))

	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusNoContent, "")

	var sessionCount int64
	testutils.MustExec(t, db.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
	assert.Equal(t, sessionCount, int64(0), "session count mismatch")
}

func TestMe(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234", "topper")
	testutils.MustExec(t, db.Model(&database.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"coin_balance": 120, "total_earned": 400}), "preparing balance")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/me", "")
	res := testutils.HTTPAuthDo(t, db, req, user)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload struct {
		User struct {
			UUID string `json:"uuid"`
		} `json:"user"`
		Wallet struct {
			CoinBalance       int `json:"coin_balance"`
			WalletBalance     int `json:"wallet_balance"`
			FreeDownloadsLeft int `json:"free_downloads_left"`
		} `json:"wallet"`
	}
	testutils.MustUnmarshalJSON(t, res, &payload)

	assert.Equal(t, payload.User.UUID, user.UUID, "user uuid mismatch")
	assert.Equal(t, payload.Wallet.CoinBalance, 120, "coin balance mismatch")
	assert.Equal(t, payload.Wallet.WalletBalance, 400/app.CoinsPerRupee, "wallet balance mismatch")
	assert.Equal(t, payload.Wallet.FreeDownloadsLeft, 3, "free downloads mismatch")
}

func TestMeGuest(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/me", "")
	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "")
}

func TestLeaderboard(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	t1 := testutils.SetupUserData(db, "t1@example.com", "pass1234", "topper")
	t2 := testutils.SetupUserData(db, "t2@example.com", "pass1234", "topper")
	testutils.SetupUserData(db, "s1@example.com", "pass1234", "student")
	testutils.MustExec(t, db.Model(&database.User{}).Where("id = ?", t1.ID).Update("total_earned", 100), "preparing t1")
	testutils.MustExec(t, db.Model(&database.User{}).Where("id = ?", t2.ID).Update("total_earned", 300), "preparing t2")

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/leaderboard?by=earnings", "")
	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusOK, "")

	var payload []struct {
		Rank int    `json:"rank"`
		UUID string `json:"uuid"`
	}
	testutils.MustUnmarshalJSON(t, res, &payload)

	assert.Equalf(t, len(payload), 2, "leaderboard length mismatch")
	assert.Equal(t, payload[0].UUID, t2.UUID, "first place mismatch")
	assert.Equal(t, payload[0].Rank, 1, "first rank mismatch")
	assert.Equal(t, payload[1].UUID, t1.UUID, "second place mismatch")
}

func TestLeaderboardInvalidKind(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := app.NewTest()
	a.DB = db
	server := MustNewServer(t, &a)
	defer server.Close()

	req := testutils.MakeReq(server.URL, "GET", "/api/v1/leaderboard?by=bogus", "")
	res := testutils.HTTPDo(t, req)

	assert.StatusCodeEquals(t, res, http.StatusBadRequest, "")
}
