package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestListAuthors(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`SELECT id_author, name`).
		WillReturnRows(sqlmock.NewRows([]string{"id_author", "name"}).
			AddRow(int64(2), "Alice").
			AddRow(int64(1), "Bob"))

	authors, err := s.ListAuthors(context.Background())
	if err != nil {
		t.Fatalf("ListAuthors error: %v", err)
	}
	if len(authors) != 2 || authors[0].Name != "Alice" || authors[1].ID != 1 {
		t.Fatalf("unexpected authors %+v", authors)
	}
}

func TestAlbumsByAuthor(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`SELECT id_album, name, img, premium, id_author`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id_album", "name", "img", "premium", "id_author"}).
			AddRow(int64(9), "Debut", "/public/img/x.jpg", "1", int64(5)))

	albums, err := s.AlbumsByAuthor(context.Background(), 5)
	if err != nil {
		t.Fatalf("AlbumsByAuthor error: %v", err)
	}
	if len(albums) != 1 || albums[0].Image == nil || *albums[0].Image != "/public/img/x.jpg" {
		t.Fatalf("unexpected albums %+v", albums)
	}
}
