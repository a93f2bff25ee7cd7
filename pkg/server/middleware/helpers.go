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

package middleware

import (
	"net/http"
	"strings"

	"github.com/notebazaar/notebazaar/pkg/server/log"
)

// SessionCookieName is the name of the session cookie
const SessionCookieName = "notebazaar_session"

// DoError logs the error and responds with the given status code
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	log.ErrorWrap(err, msg)
	http.Error(w, http.StatusText(statusCode), statusCode)
}

// RespondUnauthorized responds with 401 and prompts the client to authenticate
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="notebazaar"`)
	http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
}

// GetCredential extracts the session key from the request. It looks at the
// Authorization header first and falls back to the session cookie.
func GetCredential(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", nil
		}

		return parts[1], nil
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err == http.ErrNoCookie {
		return "", nil
	} else if err != nil {
		return "", err
	}

	return cookie.Value, nil
}
