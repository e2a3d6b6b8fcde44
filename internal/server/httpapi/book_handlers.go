package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"

	"github.com/NorrinRad01/narrative/internal/model"
	"github.com/NorrinRad01/narrative/internal/service"
)

type createBookRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Status      string `json:"status"`
	CoverURL    string `json:"cover_url"`
}

// updateBookRequest uses pointer fields: absent fields keep current values.
type updateBookRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Genre       *string `json:"genre"`
	Status      *string `json:"status"`
	CoverURL    *string `json:"cover_url"`
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.ListPublished(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books, "count": len(books)})
}

func (s *Server) handleListMyBooks(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	books, err := s.books.ListMine(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books, "count": len(books)})
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	var req createBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}
	b, err := s.books.Create(r.Context(), userID, service.CreateBookInput{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Status:      model.BookStatus(req.Status),
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]*model.Book{"book": b})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	b, err := s.books.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.BookWithAuthor{"book": b})
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	var req updateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}
	upd := model.BookUpdate{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		CoverURL:    req.CoverURL,
	}
	if req.Status != nil {
		st := model.BookStatus(*req.Status)
		upd.Status = &st
	}
	b, err := s.books.Update(r.Context(), id, userID, upd)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.Book{"book": b})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromCtx(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, codeNotFound, "resource not found")
		return
	}
	if err := s.books.Delete(r.Context(), id, userID); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// pathID parses a UUID path variable. An unparseable id behaves like a
// missing resource.
func pathID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
