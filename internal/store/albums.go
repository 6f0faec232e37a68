package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Album is a row in the album table, always owned by one author.
type Album struct {
	ID       int64   `json:"id_album"`
	Name     string  `json:"name"`
	Image    *string `json:"img"`
	Premium  string  `json:"premium"`
	AuthorID int64   `json:"id_author"`
}

// AlbumsByAuthor lists the albums owned by an author.
func (s *Store) AlbumsByAuthor(ctx context.Context, authorID int64) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id_album, name, img, premium, id_author
		FROM album
		WHERE id_author = $1
		ORDER BY id_album ASC
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	return albums, nil
}

func scanAlbum(row rowScanner) (Album, error) {
	var (
		album        Album
		img, premium sql.NullString
	)
	if err := row.Scan(&album.ID, &album.Name, &img, &premium, &album.AuthorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, err
		}
		return Album{}, fmt.Errorf("scan album: %w", err)
	}
	if img.Valid {
		album.Image = &img.String
	}
	album.Premium = premium.String
	return album, nil
}
