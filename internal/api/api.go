package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/0x0BSoD/articleKeeper/internal/auth"
	"github.com/0x0BSoD/articleKeeper/internal/model"
	"github.com/0x0BSoD/articleKeeper/internal/storage"
)

type ArticleStore interface {
	ListPublished() []model.Article
	Create(draft model.Draft, ownerID string) (model.Article, error)
	Update(idOrURL string, patch model.Patch, ownerID string) (model.Article, error)
	UpdateStatus(idOrURL string, status model.Status, ownerID string) (model.Article, error)
}

type CredentialChecker interface {
	Verify(userID, password string) bool
}

type TokenService interface {
	Issue(subject string) (string, error)
	Validate(token string) (string, error)
}

// Server holds dependencies for the HTTP handlers.
type Server struct {
	store  ArticleStore
	creds  CredentialChecker
	tokens TokenService
	logger *slog.Logger
	router *mux.Router
}

// New wires up routes and returns a ready-to-use Server.
func New(store ArticleStore, creds CredentialChecker, tokens TokenService, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		creds:  creds,
		tokens: tokens,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	s.router.HandleFunc("/articles", s.handleListPublished).Methods(http.MethodGet)
	s.router.HandleFunc("/articles", s.authorize(s.handleCreate)).Methods(http.MethodPost)
	s.router.HandleFunc("/articles/{id}/status", s.authorize(s.handleUpdateStatus)).Methods(http.MethodPut)
	s.router.HandleFunc("/articles/{id}", s.authorize(s.handleUpdate)).Methods(http.MethodPut)
}

// ---------- Authorization ----------

type ctxKey int

const ownerKey ctxKey = iota

// authorize validates the bearer token before the wrapped handler runs; on
// any failure the request is rejected without touching the store. The token
// subject is made available to the handler as the acting owner id.
func (s *Server) authorize(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		subject, err := s.tokens.Validate(raw)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				writeError(w, http.StatusUnauthorized, "token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ownerKey, subject)))
	}
}

func owner(r *http.Request) string {
	subject, _ := r.Context().Value(ownerKey).(string)
	return subject
}

// ---------- Handlers ----------

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Article API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.creds.Verify(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.logger.Info("admin logged in", "user_id", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) handleListPublished(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPublished())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if draft.Title == "" || draft.URL == "" {
		writeError(w, http.StatusBadRequest, "title and url are required")
		return
	}
	if draft.Status != "" {
		if _, err := model.ParseStatus(string(draft.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	article, err := s.store.Create(draft, owner(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("article created", "id", article.ID, "url", article.URL)
	writeJSON(w, http.StatusCreated, article)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if patch.Status != nil {
		if _, err := model.ParseStatus(string(*patch.Status)); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if patch.Title != nil && *patch.Title == "" {
		writeError(w, http.StatusBadRequest, "title must not be empty")
		return
	}

	article, err := s.store.Update(mux.Vars(r)["id"], patch, owner(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("article updated", "id", article.ID)
	writeJSON(w, http.StatusOK, article)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	status, err := model.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	article, err := s.store.UpdateStatus(mux.Vars(r)["id"], status, owner(r))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info("article status updated", "id", article.ID, "status", article.Status)
	writeJSON(w, http.StatusOK, article)
}

// ---------- Helpers ----------

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrDuplicateURL):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
