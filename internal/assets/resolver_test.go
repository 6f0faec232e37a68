package assets

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func multipartForm(t *testing.T, files map[string]string) *multipart.Form {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for field, content := range files {
		part, err := w.CreateFormFile(field, field+".bin")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form
}

func TestResolveUploadedPart(t *testing.T) {
	root := t.TempDir()
	r := New(Config{Root: root})

	form := multipartForm(t, map[string]string{"audio": "fake mp3 bytes"})

	ref := r.Resolve(Audio, FilePart(form, "audio"), "")
	if !strings.HasPrefix(ref, "/public/mp3/") {
		t.Fatalf("unexpected ref %q", ref)
	}
	if !strings.HasSuffix(ref, "_audio.bin") {
		t.Fatalf("expected original basename preserved, got %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/"))))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake mp3 bytes" {
		t.Fatalf("stored content = %q", data)
	}
}

func TestResolveBase64Fallback(t *testing.T) {
	root := t.TempDir()
	r := New(Config{Root: root})

	ref := r.Resolve(Audio, nil, "data:audio/mp3;base64,QQ==")
	if !strings.HasPrefix(ref, "/public/mp3/") || !strings.HasSuffix(ref, ".mp3") {
		t.Fatalf("unexpected ref %q", ref)
	}

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(ref, "/"))))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "A" {
		t.Fatalf("decoded content = %q", data)
	}
}

func TestResolveExtensionPerSlot(t *testing.T) {
	r := New(Config{Root: t.TempDir()})

	tests := []struct {
		kind Kind
		dir  string
		ext  string
	}{
		{Image, "/public/img/", ".jpg"},
		{Audio, "/public/mp3/", ".mp3"},
		{Lyric, "/lyrics/", ".txt"},
	}

	for _, tc := range tests {
		ref := r.Resolve(tc.kind, nil, "data:application/octet-stream;base64,QQ==")
		if !strings.HasPrefix(ref, tc.dir) || !strings.HasSuffix(ref, tc.ext) {
			t.Fatalf("slot %s: unexpected ref %q", tc.kind, ref)
		}
	}
}

func TestResolveExistingPathRoundTrip(t *testing.T) {
	root := t.TempDir()
	r := New(Config{Root: root})

	// Store via base64, then reference the result as a plain path.
	stored := r.Resolve(Lyric, nil, "data:text/plain;base64,aGVsbG8=")
	if stored == "" {
		t.Fatal("expected stored reference")
	}

	got := r.Resolve(Lyric, nil, stored)
	if got != stored {
		t.Fatalf("round trip: got %q, want %q", got, stored)
	}
}

func TestResolveMisses(t *testing.T) {
	r := New(Config{Root: t.TempDir()})

	tests := []struct {
		name     string
		fallback string
	}{
		{"empty fallback", ""},
		{"nonexistent path", "/public/mp3/missing.mp3"},
		{"invalid base64", "data:audio/mp3;base64,@@@"},
		{"path escaping root", "../../etc/passwd"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if ref := r.Resolve(Audio, nil, tc.fallback); ref != "" {
				t.Fatalf("expected empty ref, got %q", ref)
			}
		})
	}
}

func TestAlbumImageExactIndexWins(t *testing.T) {
	r := New(Config{Root: t.TempDir()})

	form := multipartForm(t, map[string]string{
		"album_img_0": "cover zero",
		"album_img_1": "cover one",
	})

	ref := r.AlbumImage(form, 1)
	if ref == "" {
		t.Fatal("expected a stored reference")
	}
	if !strings.HasSuffix(ref, "_album_img_1.bin") {
		t.Fatalf("expected the index-1 part, got %q", ref)
	}
}

func TestAlbumImagePrefixFallback(t *testing.T) {
	r := New(Config{Root: t.TempDir()})

	form := multipartForm(t, map[string]string{
		"album_img_shared": "shared cover",
		"image":            "song cover",
	})

	ref := r.AlbumImage(form, 3)
	if !strings.HasSuffix(ref, "_album_img_shared.bin") {
		t.Fatalf("expected prefix-matched part, got %q", ref)
	}
}

func TestAlbumImageNoForm(t *testing.T) {
	r := New(Config{Root: t.TempDir()})
	if ref := r.AlbumImage(nil, 0); ref != "" {
		t.Fatalf("expected empty ref, got %q", ref)
	}
}
