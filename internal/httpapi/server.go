// Package httpapi wires HTTP handlers to the song service.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/MinhPhi2504/IE313.Q12/internal/app/songs"
	"github.com/MinhPhi2504/IE313.Q12/internal/request"
	"github.com/MinhPhi2504/IE313.Q12/internal/store"
)

// SongService captures the song workflows needed by the HTTP handlers.
type SongService interface {
	Create(ctx context.Context, req request.SongRequest) (songs.Result, error)
	List(ctx context.Context, filter store.SongFilter) ([]store.Song, error)
	Get(ctx context.Context, id string) (store.SongDetail, error)
	Authors(ctx context.Context) ([]store.Author, error)
	AuthorAlbums(ctx context.Context, authorID int64) ([]store.Album, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	songs SongService
}

// New configures a Server with the given song service.
func New(songSvc SongService) *Server {
	return &Server{songs: songSvc}
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/songs", s.handleCreateSong)
	mux.HandleFunc("GET /api/v1/songs", s.handleListSongs)
	mux.HandleFunc("GET /api/v1/songs/{id}", s.handleGetSong)
	mux.HandleFunc("GET /api/v1/authors", s.handleListAuthors)
	mux.HandleFunc("GET /api/v1/authors/{id}/albums", s.handleAuthorAlbums)

	return mux
}

type createResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	SongID    string            `json:"song_id"`
	Saved     songs.SavedAssets `json:"saved"`
	AuthorIDs []int64           `json:"author_ids"`
}

type errorListResponse struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}
