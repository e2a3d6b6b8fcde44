package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/NorrinRad01/narrative/internal/model"
)

type createChapterRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// updateChapterRequest uses pointer fields: absent fields keep current values.
type updateChapterRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type reorderRequest struct {
	Chapters []model.ChapterOrder `json:"chapters"`
}

func (s *Server) handleListChapters(w http.ResponseWriter, r *http.Request) {
	bookID, ok := pathID(r, "bookId")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	chapters, err := s.chapters.ListByBook(r.Context(), bookID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Chapter{"chapters": chapters})
}

func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	bookID, ok := pathID(r, "bookId")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	var req createChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}
	c, err := s.chapters.Create(r.Context(), bookID, userID, req.Title, req.Content)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]*model.Chapter{"chapter": c})
}

func (s *Server) handleUpdateChapter(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	var req updateChapterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}
	c, err := s.chapters.Update(r.Context(), id, userID, model.ChapterUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.Chapter{"chapter": c})
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	if err := s.chapters.Delete(r.Context(), id, userID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleReorderChapters(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	bookID, ok := pathID(r, "bookId")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}
	if err := s.chapters.Reorder(r.Context(), bookID, userID, req.Chapters); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
