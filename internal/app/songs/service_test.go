package songs

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/MinhPhi2504/IE313.Q12/internal/assets"
	"github.com/MinhPhi2504/IE313.Q12/internal/request"
	"github.com/MinhPhi2504/IE313.Q12/internal/store"
)

type fakeStore struct {
	song      store.Song
	ops       []store.AuthorOp
	returnIDs []int64
	createErr error
	called    bool
}

func (f *fakeStore) CreateSong(_ context.Context, song store.Song, ops []store.AuthorOp) ([]int64, error) {
	f.called = true
	f.song = song
	f.ops = ops
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.returnIDs, nil
}

func (f *fakeStore) ListSongs(context.Context, store.SongFilter) ([]store.Song, error) {
	return nil, nil
}

func (f *fakeStore) SongByID(context.Context, string) (store.SongDetail, error) {
	return store.SongDetail{}, nil
}

func (f *fakeStore) ListAuthors(context.Context) ([]store.Author, error) { return nil, nil }

func (f *fakeStore) AlbumsByAuthor(context.Context, int64) ([]store.Album, error) {
	return nil, nil
}

// fakeResolver resolves base64 data URIs and root-relative paths to canned
// refs without touching disk; anything else misses.
type fakeResolver struct {
	albumImages map[int]string
}

func (r *fakeResolver) Resolve(kind assets.Kind, part *multipart.FileHeader, fallback string) string {
	if strings.HasPrefix(fallback, "data:") {
		return "/stored/" + string(kind)
	}
	if strings.HasPrefix(fallback, "/") {
		return fallback
	}
	return ""
}

func (r *fakeResolver) AlbumImage(_ *multipart.Form, index int) string {
	return r.albumImages[index]
}

func TestCreateSuccess(t *testing.T) {
	st := &fakeStore{returnIDs: []int64{7}}
	svc := New(st, &fakeResolver{})

	res, err := svc.Create(context.Background(), request.SongRequest{
		SongName: "Test",
		Audio:    "data:audio/mp3;base64,QQ==",
		Authors: []request.AuthorInput{
			{Case: request.CaseNew, Name: "Alice"},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if !strings.HasPrefix(res.SongID, "song_") {
		t.Fatalf("song id = %q", res.SongID)
	}
	if res.Saved.Audio == nil || *res.Saved.Audio != "/stored/audio" {
		t.Fatalf("saved audio = %v", res.Saved.Audio)
	}
	if len(res.AuthorIDs) != 1 || res.AuthorIDs[0] != 7 {
		t.Fatalf("author ids = %v", res.AuthorIDs)
	}
	if len(st.ops) != 1 || st.ops[0].Case != store.AuthorNew || st.ops[0].Name != "Alice" {
		t.Fatalf("unexpected ops %+v", st.ops)
	}
	if st.song.Audio == nil || st.song.ID != res.SongID {
		t.Fatalf("unexpected persisted song %+v", st.song)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  request.SongRequest
		want []string
	}{
		{
			name: "missing song name",
			req:  request.SongRequest{Audio: "data:audio/mp3;base64,QQ=="},
			want: []string{"song_name required"},
		},
		{
			name: "missing audio",
			req:  request.SongRequest{SongName: "Test"},
			want: []string{"audio required (file or filename or base64)"},
		},
		{
			name: "both missing",
			req:  request.SongRequest{},
			want: []string{"song_name required", "audio required (file or filename or base64)"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			st := &fakeStore{}
			svc := New(st, &fakeResolver{})

			_, err := svc.Create(context.Background(), tc.req)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Errors) != len(tc.want) {
				t.Fatalf("errors = %v, want %v", verr.Errors, tc.want)
			}
			for i := range tc.want {
				if verr.Errors[i] != tc.want[i] {
					t.Fatalf("errors = %v, want %v", verr.Errors, tc.want)
				}
			}
			if st.called {
				t.Fatal("store must not be touched on validation failure")
			}
		})
	}
}

// An unresolved audio field that still carries a value passes validation, as
// the reference may point at media stored out of band.
func TestCreateAudioFieldAloneIsEnough(t *testing.T) {
	st := &fakeStore{}
	svc := New(st, &fakeResolver{})

	_, err := svc.Create(context.Background(), request.SongRequest{
		SongName: "Test",
		Audio:    "some-opaque-ref.mp3",
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !st.called {
		t.Fatal("expected store call")
	}
	if st.song.Audio != nil {
		t.Fatalf("expected null audio ref, got %v", *st.song.Audio)
	}
}

func TestCreateAlbumObligations(t *testing.T) {
	st := &fakeStore{returnIDs: []int64{5, 8}}
	svc := New(st, &fakeResolver{albumImages: map[int]string{1: "/public/img/a1.jpg"}})

	_, err := svc.Create(context.Background(), request.SongRequest{
		SongName: "Test",
		Audio:    "data:audio/mp3;base64,QQ==",
		Authors: []request.AuthorInput{
			{Case: request.CaseExisting, ID: 5, Album: &request.AlbumRef{ID: 9}},
			{Case: request.CaseNew, Name: "Bob", NewAlbum: &request.NewAlbum{Name: "Debut", Premium: "1"}},
			{Case: request.CaseNone},
		},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if len(st.ops) != 2 {
		t.Fatalf("expected 2 ops, got %+v", st.ops)
	}
	if st.ops[0].Case != store.AuthorExisting || st.ops[0].AlbumID != 9 {
		t.Fatalf("unexpected first op %+v", st.ops[0])
	}
	second := st.ops[1]
	if second.Case != store.AuthorNew || second.NewAlbum == nil {
		t.Fatalf("unexpected second op %+v", second)
	}
	if second.NewAlbum.Image == nil || *second.NewAlbum.Image != "/public/img/a1.jpg" {
		t.Fatalf("album image = %v", second.NewAlbum.Image)
	}
}

func TestCreatePropagatesStoreError(t *testing.T) {
	st := &fakeStore{createErr: store.ErrAuthorNameRequired}
	svc := New(st, &fakeResolver{})

	_, err := svc.Create(context.Background(), request.SongRequest{
		SongName: "Test",
		Audio:    "data:audio/mp3;base64,QQ==",
		Authors:  []request.AuthorInput{{Case: request.CaseNew}},
	})
	if !errors.Is(err, store.ErrAuthorNameRequired) {
		t.Fatalf("expected ErrAuthorNameRequired, got %v", err)
	}
}
