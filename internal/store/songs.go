package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Song is a row in the song table. Asset references are root-relative paths
// and nullable.
type Song struct {
	ID      string  `json:"id"`
	Name    string  `json:"song_name"`
	Style   string  `json:"style"`
	Premium string  `json:"premium"`
	Country string  `json:"country"`
	Image   *string `json:"img"`
	Audio   *string `json:"audio"`
	Lyric   *string `json:"lyric"`
}

// SongDetail is a song together with its linked authors and albums.
type SongDetail struct {
	Song
	Authors []Author `json:"authors"`
	Albums  []Album  `json:"albums"`
}

// AuthorCase tags how an author obligation resolves to an author row.
type AuthorCase int

const (
	// AuthorExisting links a pre-existing author by id.
	AuthorExisting AuthorCase = iota
	// AuthorNew creates the author row inside the transaction.
	AuthorNew
	// AuthorLookup resolves by exact name; a miss contributes nothing.
	AuthorLookup
)

// AlbumInsert describes an album row to create for the author being linked.
type AlbumInsert struct {
	Name    string
	Image   *string
	Premium string
}

// AuthorOp is one linking obligation produced by entity resolution. AlbumID
// and NewAlbum apply independently: an entry may link an existing album and
// create a new one.
type AuthorOp struct {
	Case     AuthorCase
	ID       int64
	Name     string
	AlbumID  int64
	NewAlbum *AlbumInsert
}

// CreateSong inserts the song and executes every author obligation in one
// transaction: author rows (AuthorNew), album rows plus ctalbum links, and
// one ctbh link per contributed author id. Any failure rolls the whole unit
// back; no partial rows are observable.
func (s *Store) CreateSong(ctx context.Context, song Song, authors []AuthorOp) ([]int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO song (id, song_name, style, premium, img, audio, lyric, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, song.ID, song.Name, song.Style, song.Premium, song.Image, song.Audio, song.Lyric, song.Country); err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}

	authorIDs := make([]int64, 0, len(authors))
	for _, op := range authors {
		switch op.Case {
		case AuthorExisting:
			if err := linkAlbums(ctx, tx, song.ID, op.ID, op); err != nil {
				return nil, err
			}
			authorIDs = append(authorIDs, op.ID)

		case AuthorNew:
			if strings.TrimSpace(op.Name) == "" {
				return nil, ErrAuthorNameRequired
			}
			var id int64
			if err := tx.QueryRowContext(ctx, `
				INSERT INTO author (name)
				VALUES ($1)
				RETURNING id_author
			`, op.Name).Scan(&id); err != nil {
				return nil, fmt.Errorf("insert author: %w", err)
			}
			if err := linkAlbums(ctx, tx, song.ID, id, op); err != nil {
				return nil, err
			}
			authorIDs = append(authorIDs, id)

		case AuthorLookup:
			var id int64
			err := tx.QueryRowContext(ctx, `
				SELECT id_author
				FROM author
				WHERE name = $1
				LIMIT 1
			`, op.Name).Scan(&id)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("lookup author: %w", err)
			}
			authorIDs = append(authorIDs, id)
		}
	}

	for _, id := range authorIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ctbh (id_author, id_song)
			VALUES ($1, $2)
		`, id, song.ID); err != nil {
			return nil, fmt.Errorf("insert song author link: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return authorIDs, nil
}

// linkAlbums applies an obligation's album handling for the resolved author
// id: link an existing album and/or create a new one and link it.
func linkAlbums(ctx context.Context, tx *sql.Tx, songID string, authorID int64, op AuthorOp) error {
	if op.AlbumID > 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ctalbum (id_album, id_song)
			VALUES ($1, $2)
		`, op.AlbumID, songID); err != nil {
			return fmt.Errorf("insert song album link: %w", err)
		}
	}

	if op.NewAlbum != nil {
		var albumID int64
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO album (name, img, premium, id_author)
			VALUES ($1, $2, $3, $4)
			RETURNING id_album
		`, op.NewAlbum.Name, op.NewAlbum.Image, op.NewAlbum.Premium, authorID).Scan(&albumID); err != nil {
			return fmt.Errorf("insert album: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ctalbum (id_album, id_song)
			VALUES ($1, $2)
		`, albumID, songID); err != nil {
			return fmt.Errorf("insert song album link: %w", err)
		}
	}

	return nil
}

// SongFilter constrains the results returned by ListSongs.
type SongFilter struct {
	Query   string
	Style   string
	Country string
}

// ListSongs returns songs matching the filter.
func (s *Store) ListSongs(ctx context.Context, filter SongFilter) ([]Song, error) {
	query := `
		SELECT id, song_name, style, premium, img, audio, lyric, country
		FROM song
	`

	var (
		clauses []string
		args    []any
	)

	if q := strings.TrimSpace(filter.Query); q != "" {
		args = append(args, "%"+q+"%")
		clauses = append(clauses, fmt.Sprintf("song_name ILIKE $%d", len(args)))
	}
	if style := strings.TrimSpace(filter.Style); style != "" {
		args = append(args, style)
		clauses = append(clauses, fmt.Sprintf("style = $%d", len(args)))
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		args = append(args, country)
		clauses = append(clauses, fmt.Sprintf("country = $%d", len(args)))
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY song_name ASC LIMIT 100"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return songs, nil
}

// SongByID returns one song with its linked authors and albums.
func (s *Store) SongByID(ctx context.Context, id string) (SongDetail, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, song_name, style, premium, img, audio, lyric, country
		FROM song
		WHERE id = $1
	`, id)

	song, err := scanSong(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SongDetail{}, ErrSongNotFound
		}
		return SongDetail{}, err
	}

	detail := SongDetail{Song: song}

	authorRows, err := s.db.QueryContext(ctx, `
		SELECT a.id_author, a.name
		FROM author a
		JOIN ctbh c ON c.id_author = a.id_author
		WHERE c.id_song = $1
		ORDER BY a.id_author ASC
	`, id)
	if err != nil {
		return SongDetail{}, fmt.Errorf("select song authors: %w", err)
	}
	defer authorRows.Close()

	for authorRows.Next() {
		var a Author
		if err := authorRows.Scan(&a.ID, &a.Name); err != nil {
			return SongDetail{}, fmt.Errorf("scan song author: %w", err)
		}
		detail.Authors = append(detail.Authors, a)
	}
	if err := authorRows.Err(); err != nil {
		return SongDetail{}, fmt.Errorf("iterate song authors: %w", err)
	}

	albumRows, err := s.db.QueryContext(ctx, `
		SELECT al.id_album, al.name, al.img, al.premium, al.id_author
		FROM album al
		JOIN ctalbum c ON c.id_album = al.id_album
		WHERE c.id_song = $1
		ORDER BY al.id_album ASC
	`, id)
	if err != nil {
		return SongDetail{}, fmt.Errorf("select song albums: %w", err)
	}
	defer albumRows.Close()

	for albumRows.Next() {
		album, err := scanAlbum(albumRows)
		if err != nil {
			return SongDetail{}, err
		}
		detail.Albums = append(detail.Albums, album)
	}
	if err := albumRows.Err(); err != nil {
		return SongDetail{}, fmt.Errorf("iterate song albums: %w", err)
	}

	return detail, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (Song, error) {
	var (
		song              Song
		img, audio, lyric sql.NullString
	)
	if err := row.Scan(&song.ID, &song.Name, &song.Style, &song.Premium, &img, &audio, &lyric, &song.Country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, err
		}
		return Song{}, fmt.Errorf("scan song: %w", err)
	}
	if img.Valid {
		song.Image = &img.String
	}
	if audio.Valid {
		song.Audio = &audio.String
	}
	if lyric.Valid {
		song.Lyric = &lyric.String
	}
	return song, nil
}
