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
	"github.com/notebazaar/notebazaar/pkg/server/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

// StartJobs schedules background housekeeping jobs and starts the scheduler.
// The caller owns the returned cron and should stop it on shutdown.
func (a *App) StartJobs() (*cron.Cron, error) {
	c := cron.New()

	err := c.AddFunc("@hourly", func() {
		if err := a.DeleteExpiredSessions(); err != nil {
			log.ErrorWrap(err, "deleting expired sessions")
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "scheduling session cleanup")
	}

	c.Start()

	return c, nil
}
