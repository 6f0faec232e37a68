// Package songs coordinates song creation: asset resolution, author entity
// resolution, and transactional persistence.
package songs

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"github.com/MinhPhi2504/IE313.Q12/internal/assets"
	"github.com/MinhPhi2504/IE313.Q12/internal/request"
	"github.com/MinhPhi2504/IE313.Q12/internal/store"
)

// Store captures the persistence operations the service needs.
type Store interface {
	CreateSong(ctx context.Context, song store.Song, authors []store.AuthorOp) ([]int64, error)
	ListSongs(ctx context.Context, filter store.SongFilter) ([]store.Song, error)
	SongByID(ctx context.Context, id string) (store.SongDetail, error)
	ListAuthors(ctx context.Context) ([]store.Author, error)
	AlbumsByAuthor(ctx context.Context, authorID int64) ([]store.Album, error)
}

// AssetResolver resolves the four asset slots to stored references.
type AssetResolver interface {
	Resolve(kind assets.Kind, part *multipart.FileHeader, fallback string) string
	AlbumImage(form *multipart.Form, index int) string
}

// ValidationError reports every violated request rule at once.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// SavedAssets holds the stored references for the song's three asset slots.
type SavedAssets struct {
	Image *string `json:"image"`
	Audio *string `json:"audio"`
	Lyric *string `json:"lyric"`
}

// Result is the outcome of a successful song creation.
type Result struct {
	SongID    string
	AuthorIDs []int64
	Saved     SavedAssets
}

// Service implements song workflows on top of the store and asset resolver.
type Service struct {
	store  Store
	assets AssetResolver
}

// New wires a Service.
func New(st Store, res AssetResolver) *Service {
	return &Service{store: st, assets: res}
}

// Create persists a normalized song request. Assets are stored first (file
// writes are not undone if the transaction later fails), then the song and
// its author/album graph are committed as one unit.
func (s *Service) Create(ctx context.Context, req request.SongRequest) (Result, error) {
	saved := SavedAssets{
		Image: nullable(s.assets.Resolve(assets.Image, assets.FilePart(req.Files, "image"), req.Image)),
		Audio: nullable(s.assets.Resolve(assets.Audio, assets.FilePart(req.Files, "audio"), req.Audio)),
		Lyric: nullable(s.assets.Resolve(assets.Lyric, assets.FilePart(req.Files, "lyricFile"), req.Lyric)),
	}

	var violations []string
	if req.SongName == "" {
		violations = append(violations, "song_name required")
	}
	if saved.Audio == nil && req.Audio == "" {
		violations = append(violations, "audio required (file or filename or base64)")
	}
	if len(violations) > 0 {
		return Result{}, &ValidationError{Errors: violations}
	}

	song := store.Song{
		ID:      newSongID(),
		Name:    req.SongName,
		Style:   req.Style,
		Premium: req.Premium,
		Country: req.Country,
		Image:   saved.Image,
		Audio:   saved.Audio,
		Lyric:   saved.Lyric,
	}

	ids, err := s.store.CreateSong(ctx, song, s.authorOps(req))
	if err != nil {
		return Result{}, err
	}

	return Result{SongID: song.ID, AuthorIDs: ids, Saved: saved}, nil
}

// authorOps maps normalized author entries to linking obligations, resolving
// per-album cover images along the way. The entry index doubles as the
// album_img_<n> disambiguator.
func (s *Service) authorOps(req request.SongRequest) []store.AuthorOp {
	ops := make([]store.AuthorOp, 0, len(req.Authors))
	for i, a := range req.Authors {
		var op store.AuthorOp

		switch a.Case {
		case request.CaseExisting:
			op = store.AuthorOp{Case: store.AuthorExisting, ID: a.ID}
		case request.CaseNew:
			op = store.AuthorOp{Case: store.AuthorNew, Name: a.Name}
		case request.CaseLookup:
			op = store.AuthorOp{Case: store.AuthorLookup, Name: a.Name}
		default:
			continue
		}

		if a.Album != nil {
			op.AlbumID = a.Album.ID
		}
		if a.NewAlbum != nil {
			img := s.assets.AlbumImage(req.Files, i)
			if img == "" && a.NewAlbum.Image != "" {
				img = s.assets.Resolve(assets.Image, nil, a.NewAlbum.Image)
			}
			op.NewAlbum = &store.AlbumInsert{
				Name:    a.NewAlbum.Name,
				Image:   nullable(img),
				Premium: a.NewAlbum.Premium,
			}
		}

		ops = append(ops, op)
	}
	return ops
}

// List returns songs matching the filter.
func (s *Service) List(ctx context.Context, filter store.SongFilter) ([]store.Song, error) {
	return s.store.ListSongs(ctx, filter)
}

// Get returns one song with its linked authors and albums.
func (s *Service) Get(ctx context.Context, id string) (store.SongDetail, error) {
	return s.store.SongByID(ctx, id)
}

// Authors returns the author catalog.
func (s *Service) Authors(ctx context.Context) ([]store.Author, error) {
	return s.store.ListAuthors(ctx)
}

// AuthorAlbums returns the albums owned by one author.
func (s *Service) AuthorAlbums(ctx context.Context, authorID int64) ([]store.Album, error) {
	return s.store.AlbumsByAuthor(ctx, authorID)
}

func newSongID() string {
	return "song_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
