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

// ReviewTask is a result of PresentReviewTask
type ReviewTask struct {
	UUID      string     `json:"uuid"`
	CreatedAt time.Time  `json:"created_at"`
	Status    string     `json:"status"`
	Comments  string     `json:"comments,omitempty"`
	DecidedAt *time.Time `json:"decided_at"`
	Note      Note       `json:"note"`
}

// PresentReviewTask presents a review task
func PresentReviewTask(task database.ReviewTask) ReviewTask {
	return ReviewTask{
		UUID:      task.UUID,
		CreatedAt: FormatTS(task.CreatedAt),
		Status:    task.Status,
		Comments:  task.Comments,
		DecidedAt: formatTSPtr(task.DecidedAt),
		Note:      PresentNote(task.Note),
	}
}

// PresentReviewTasks presents review tasks
func PresentReviewTasks(tasks []database.ReviewTask) []ReviewTask {
	ret := []ReviewTask{}

	for _, task := range tasks {
		ret = append(ret, PresentReviewTask(task))
	}

	return ret
}
