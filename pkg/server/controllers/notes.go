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
	"path"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/notebazaar/notebazaar/pkg/server/app"
	"github.com/notebazaar/notebazaar/pkg/server/context"
	"github.com/notebazaar/notebazaar/pkg/server/database"
	"github.com/notebazaar/notebazaar/pkg/server/helpers"
	"github.com/notebazaar/notebazaar/pkg/server/middleware"
	"github.com/notebazaar/notebazaar/pkg/server/permissions"
	"github.com/notebazaar/notebazaar/pkg/server/presenters"
)

// maxUploadBytes is the limit for note file uploads
const maxUploadBytes = 32 << 20

// NewNotes creates a new Notes controller
func NewNotes(app *app.App) *Notes {
	return &Notes{
		app: app,
	}
}

// Notes is a notes controller
type Notes struct {
	app *app.App
}

// Create handles POST /notes. The note file arrives as multipart form data
// and is stored through the configured file store.
func (n *Notes) Create(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if !permissions.UploadNotes(user) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "only toppers can upload notes"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondJSON(w, http.StatusBadRequest, errResp{Error: "invalid multipart payload"})
		return
	}

	price := 0
	if raw := r.FormValue("price"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			handleJSONError(w, app.ErrInvalidPrice, "parsing price")
			return
		}
		price = parsed
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errResp{Error: "a note file is required"})
		return
	}
	defer file.Close()

	uuid, err := helpers.GenUUID()
	if err != nil {
		handleJSONError(w, err, "generating file key")
		return
	}

	key := fmt.Sprintf("notes/%s%s", uuid, path.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")
	fileURL, err := n.app.FileStore.Save(key, file, contentType)
	if err != nil {
		handleJSONError(w, err, "storing note file")
		return
	}

	note, err := n.app.CreateNote(*user, app.CreateNoteParams{
		Title:       r.FormValue("title"),
		Subject:     r.FormValue("subject"),
		Description: r.FormValue("description"),
		FileURL:     fileURL,
		Price:       price,
	})
	if err != nil {
		handleJSONError(w, err, "creating note")
		return
	}

	note.Topper = *user
	respondJSON(w, http.StatusCreated, presenters.PresentNote(note))
}

// Index handles GET /notes
func (n *Notes) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	notes, total, err := n.app.GetNotes(app.GetNotesParams{
		Subject: query.Get("subject"),
		Page:    parseIntQuery(r, "page"),
		PerPage: parseIntQuery(r, "per_page"),
	})
	if err != nil {
		handleJSONError(w, err, "getting notes")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Notes []presenters.Note `json:"notes"`
		Total int64             `json:"total"`
	}{
		Notes: presenters.PresentNotes(notes),
		Total: total,
	})
}

// Mine handles GET /notes/mine. It lists the authenticated topper's notes in
// any status.
func (n *Notes) Mine(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		middleware.RespondUnauthorized(w)
		return
	}

	notes, total, err := n.app.GetNotes(app.GetNotesParams{
		TopperID: user.ID,
		Status:   r.URL.Query().Get("status"),
		Page:     parseIntQuery(r, "page"),
		PerPage:  parseIntQuery(r, "per_page"),
	})
	if err != nil {
		handleJSONError(w, err, "getting notes")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Notes []presenters.Note `json:"notes"`
		Total int64             `json:"total"`
	}{
		Notes: presenters.PresentNotes(notes),
		Total: total,
	})
}

// getNoteForRequest resolves the note in the route and checks visibility
func (n *Notes) getNoteForRequest(w http.ResponseWriter, r *http.Request) (database.Note, bool) {
	vars := mux.Vars(r)
	noteUUID := vars["noteUUID"]

	note, found, err := n.app.GetNote(noteUUID)
	if err != nil {
		handleJSONError(w, err, "finding note")
		return database.Note{}, false
	}
	if !found {
		respondJSON(w, http.StatusNotFound, errResp{Error: "not found"})
		return database.Note{}, false
	}

	user := context.User(r.Context())
	if !permissions.ViewNote(user, note) {
		respondJSON(w, http.StatusNotFound, errResp{Error: "not found"})
		return database.Note{}, false
	}

	return note, true
}

// Show handles GET /notes/{noteUUID}
func (n *Notes) Show(w http.ResponseWriter, r *http.Request) {
	note, ok := n.getNoteForRequest(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, presenters.PresentNote(note))
}

// Archive handles PATCH /notes/{noteUUID}/archive
func (n *Notes) Archive(w http.ResponseWriter, r *http.Request) {
	note, ok := n.getNoteForRequest(w, r)
	if !ok {
		return
	}

	user := context.User(r.Context())
	if user == nil || (user.ID != note.TopperID && user.Role != database.RoleAdmin) {
		respondJSON(w, http.StatusForbidden, errResp{Error: "only the owner can archive a note"})
		return
	}

	if err := n.app.ArchiveNote(note); err != nil {
		handleJSONError(w, err, "archiving note")
		return
	}

	note.Status = database.NoteStatusArchived
	respondJSON(w, http.StatusOK, presenters.PresentNote(note))
}
