// Package httpapi exposes the Narrative HTTP JSON API.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/NorrinRad01/narrative/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	books    service.BookService
	chapters service.ChapterService
	covers   *CoverStore
	signKey  []byte
	log      *zap.Logger
}

// New constructs an HTTP server with injected services.
func New(auth service.AuthService, books service.BookService, chapters service.ChapterService,
	covers *CoverStore, signKey []byte, log *zap.Logger) *Server {
	return &Server{auth: auth, books: books, chapters: chapters, covers: covers, signKey: signKey, log: log}
}

// Routes registers all API routes on the router.
func (s *Server) Routes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile", s.requireAuth(s.handleProfile)).Methods(http.MethodGet)

	api.HandleFunc("/books", s.handleListBooks).Methods(http.MethodGet)
	api.HandleFunc("/books", s.requireAuth(s.handleCreateBook)).Methods(http.MethodPost)
	api.HandleFunc("/my-books", s.requireAuth(s.handleListMyBooks)).Methods(http.MethodGet)
	api.HandleFunc("/books/{id}", s.handleGetBook).Methods(http.MethodGet)
	api.HandleFunc("/books/{id}", s.requireAuth(s.handleUpdateBook)).Methods(http.MethodPut)
	api.HandleFunc("/books/{id}", s.requireAuth(s.handleDeleteBook)).Methods(http.MethodDelete)

	api.HandleFunc("/books/{bookId}/chapters", s.handleListChapters).Methods(http.MethodGet)
	api.HandleFunc("/books/{bookId}/chapters", s.requireAuth(s.handleCreateChapter)).Methods(http.MethodPost)
	api.HandleFunc("/books/{bookId}/chapters/reorder", s.requireAuth(s.handleReorderChapters)).Methods(http.MethodPut)
	api.HandleFunc("/chapters/{id}", s.requireAuth(s.handleUpdateChapter)).Methods(http.MethodPut)
	api.HandleFunc("/chapters/{id}", s.requireAuth(s.handleDeleteChapter)).Methods(http.MethodDelete)

	api.HandleFunc("/upload/cover", s.requireAuth(s.handleUploadCover)).Methods(http.MethodPost)

	if s.covers != nil {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.covers.Dir()))))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
