// Package assets persists song media (cover image, audio, lyric text) under a
// configured storage root and resolves incoming asset references.
package assets

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Kind selects an asset slot and its storage area.
type Kind string

const (
	Image Kind = "image"
	Audio Kind = "audio"
	Lyric Kind = "lyric"
)

// AlbumImagePrefix is the multipart field-name convention marking per-album
// cover uploads, e.g. album_img_0 for the first author entry.
const AlbumImagePrefix = "album_img_"

var slotDirs = map[Kind]string{
	Image: "public/img",
	Audio: "public/mp3",
	Lyric: "lyrics",
}

var slotExts = map[Kind]string{
	Image: ".jpg",
	Audio: ".mp3",
	Lyric: ".txt",
}

var dataURIRe = regexp.MustCompile(`^data:[^,]*;base64,`)

// Config holds resolver settings.
type Config struct {
	// Root is the directory stored references are relative to.
	Root string
}

// Resolver stores uploaded assets and returns root-relative references.
type Resolver struct {
	root string
}

// New builds a Resolver rooted at cfg.Root. Storage areas are created on
// demand, not here.
func New(cfg Config) *Resolver {
	return &Resolver{root: cfg.Root}
}

// Resolve produces the stored reference for one asset slot. Priority, first
// match wins: a real uploaded part, a base64 data URI fallback, a fallback
// path that already exists under the root. Failures to persist are logged and
// yield an empty reference rather than failing the request.
func (r *Resolver) Resolve(kind Kind, part *multipart.FileHeader, fallback string) string {
	if part != nil {
		ref, err := r.saveUpload(kind, part)
		if err == nil {
			return ref
		}
		log.Warn().Err(err).Str("slot", string(kind)).Str("file", part.Filename).Msg("save upload failed")
	}

	if m := dataURIRe.FindString(fallback); m != "" {
		data, err := base64.StdEncoding.DecodeString(fallback[len(m):])
		if err != nil {
			log.Warn().Err(err).Str("slot", string(kind)).Msg("decode base64 asset failed")
			return ""
		}
		ref, err := r.saveBytes(kind, data)
		if err != nil {
			log.Warn().Err(err).Str("slot", string(kind)).Msg("save base64 asset failed")
			return ""
		}
		return ref
	}

	if fallback != "" && r.exists(fallback) {
		return fallback
	}

	return ""
}

// AlbumImage resolves the cover for the album created at author position
// index. An exact album_img_<index> part wins; otherwise the first part whose
// name carries the album-image prefix is used (key order sorted, so the
// choice is deterministic when clients send a single shared part).
func (r *Resolver) AlbumImage(form *multipart.Form, index int) string {
	if form == nil {
		return ""
	}

	exact := fmt.Sprintf("%s%d", AlbumImagePrefix, index)
	if parts := form.File[exact]; len(parts) > 0 {
		return r.Resolve(Image, parts[0], "")
	}

	keys := make([]string, 0, len(form.File))
	for key := range form.File {
		if strings.HasPrefix(key, AlbumImagePrefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if parts := form.File[key]; len(parts) > 0 {
			return r.Resolve(Image, parts[0], "")
		}
	}
	return ""
}

// FilePart returns the first uploaded part under the given field name, nil
// when the request was not multipart or the part is absent.
func FilePart(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	if parts := form.File[field]; len(parts) > 0 {
		return parts[0]
	}
	return nil
}

func (r *Resolver) saveUpload(kind Kind, part *multipart.FileHeader) (string, error) {
	src, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := newToken() + "_" + filepath.Base(part.Filename)
	return r.write(kind, name, src)
}

func (r *Resolver) saveBytes(kind Kind, data []byte) (string, error) {
	name := newToken() + slotExts[kind]
	return r.write(kind, name, bytes.NewReader(data))
}

func (r *Resolver) write(kind Kind, name string, src io.Reader) (string, error) {
	dir := filepath.Join(r.root, filepath.FromSlash(slotDirs[kind]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write asset file: %w", err)
	}

	return "/" + path.Join(slotDirs[kind], name), nil
}

// exists reports whether ref names a file already stored under the root. The
// reference is cleaned against "/" first so it cannot escape the root.
func (r *Resolver) exists(ref string) bool {
	clean := path.Clean("/" + strings.TrimPrefix(ref, "/"))
	info, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(clean)))
	return err == nil && !info.IsDir()
}

// newToken yields a collision-resistant filename prefix; uniqueness across
// concurrent requests relies on this rather than locking.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
