package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/MinhPhi2504/IE313.Q12/internal/app/songs"
	"github.com/MinhPhi2504/IE313.Q12/internal/request"
	"github.com/MinhPhi2504/IE313.Q12/internal/store"
)

// handleCreateSong ingests a song creation payload (JSON, form, or multipart)
// and persists the full song/author/album graph.
func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	req, err := request.Decode(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorListResponse{Errors: []string{"invalid request payload"}})
		return
	}

	res, err := s.songs.Create(r.Context(), req)
	if err != nil {
		var verr *songs.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorListResponse{Errors: verr.Errors})
		case errors.Is(err, store.ErrAuthorNameRequired):
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "new author missing name"})
		default:
			// Driver error text stays in the logs, not in the response.
			log.Error().Err(err).Msg("create song failed")
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "could not save song"})
		}
		return
	}

	writeJSON(w, http.StatusOK, createResponse{
		Success:   true,
		Message:   "Song added",
		SongID:    res.SongID,
		Saved:     res.Saved,
		AuthorIDs: res.AuthorIDs,
	})
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.SongFilter{
		Query:   query.Get("q"),
		Style:   query.Get("style"),
		Country: query.Get("country"),
	}

	list, err := s.songs.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("list songs failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "could not list songs"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Songs []store.Song `json:"songs"`
	}{Songs: list})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := s.songs.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSongNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "song not found"})
			return
		}
		log.Error().Err(err).Str("song_id", id).Msg("get song failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "could not load song"})
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.songs.Authors(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list authors failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "could not list authors"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Authors []store.Author `json:"authors"`
	}{Authors: authors})
}

func (s *Server) handleAuthorAlbums(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid author id"})
		return
	}

	albums, err := s.songs.AuthorAlbums(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("author_id", id).Msg("list author albums failed")
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "could not list albums"})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Albums []store.Album `json:"albums"`
	}{Albums: albums})
}
