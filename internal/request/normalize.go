// Package request normalizes loosely-shaped song creation payloads into a
// canonical model. Clients send the same field under several spellings
// (song_name vs songName), authors either as a structured array or as a
// JSON-encoded string, and author entries either as objects or bare name
// strings; everything is resolved here exactly once.
package request

import (
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
)

// AuthorCase identifies how an author entry resolves to an author row.
type AuthorCase int

const (
	// CaseNone marks entries that contribute nothing.
	CaseNone AuthorCase = iota
	// CaseExisting references an author by id.
	CaseExisting
	// CaseNew asks for a new author row; Name must be non-empty by the
	// time the row is inserted.
	CaseNew
	// CaseLookup resolves the author by exact name match, silently
	// contributing nothing on a miss.
	CaseLookup
)

// AlbumRef points at an existing album to link the new song to.
type AlbumRef struct {
	ID int64
}

// NewAlbum describes an album to create for the author being processed.
type NewAlbum struct {
	Name    string
	Image   string
	Premium string
}

// AuthorInput is one normalized author entry. Case is decided once during
// normalization; downstream code never re-inspects the raw shape.
type AuthorInput struct {
	Case     AuthorCase
	ID       int64
	Name     string
	Album    *AlbumRef
	NewAlbum *NewAlbum
}

// SongRequest is the canonical, alias-free request model.
type SongRequest struct {
	SongName string
	Country  string
	Premium  string
	Style    string
	Image    string
	Audio    string
	Lyric    string
	Authors  []AuthorInput

	// Files holds multipart parts when the request was multipart, nil
	// otherwise.
	Files *multipart.Form
}

const maxMultipartMemory = 32 << 20

// Decode reads an HTTP request (JSON body or form/multipart encoded) and
// normalizes it. Malformed author payloads are non-fatal and yield an empty
// author list; only an unreadable body is an error.
func Decode(r *http.Request) (SongRequest, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if ct == "application/json" {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return SongRequest{}, err
		}
		return Normalize(payload, nil), nil
	}

	if ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return SongRequest{}, err
		}
	} else if err := r.ParseForm(); err != nil {
		return SongRequest{}, err
	}

	payload := make(map[string]any, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 1 {
			payload[key] = values[0]
			continue
		}
		anyValues := make([]any, len(values))
		for i, v := range values {
			anyValues[i] = v
		}
		payload[key] = anyValues
	}

	return Normalize(payload, r.MultipartForm), nil
}

// Normalize turns a raw payload map into the canonical request model.
func Normalize(payload map[string]any, files *multipart.Form) SongRequest {
	return SongRequest{
		SongName: getString(payload, "song_name", "songName"),
		Country:  getString(payload, "country"),
		Premium:  getString(payload, "premium"),
		Style:    getString(payload, "style"),
		Image:    getString(payload, "image"),
		Audio:    getString(payload, "audio", "audioFile"),
		Lyric:    getString(payload, "lyricFile", "lyric", "lyric_file"),
		Authors:  normalizeAuthors(getValue(payload, "authorsArray", "authors", "authorArray", "author")),
		Files:    files,
	}
}

// normalizeAuthors accepts the three wire shapes for the author list: a
// structured array, a JSON-encoded string, or a single-element array whose
// sole element is a JSON-encoded array. Anything else yields no authors.
func normalizeAuthors(raw any) []AuthorInput {
	var entries []any

	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &entries); err != nil {
			return nil
		}
	case []any:
		entries = v
		if len(v) == 1 {
			if s, ok := v[0].(string); ok && strings.HasPrefix(strings.TrimSpace(s), "[") {
				if err := json.Unmarshal([]byte(s), &entries); err != nil {
					return nil
				}
			}
		}
	default:
		return nil
	}

	var authors []AuthorInput
	for _, entry := range entries {
		switch e := entry.(type) {
		case string:
			authors = append(authors, classifyAuthor(map[string]any{
				"author_name":   e,
				"is_new_author": true,
			}))
		case map[string]any:
			authors = append(authors, classifyAuthor(e))
		}
	}
	return authors
}

// classifyAuthor applies the resolution-case decision order: an existing id
// wins, then the new-author flag, then a name for lookup.
func classifyAuthor(entry map[string]any) AuthorInput {
	in := AuthorInput{
		Name:     strings.TrimSpace(getString(entry, "author_name", "authorName")),
		Album:    albumRef(getValue(entry, "album", "albumObj")),
		NewAlbum: newAlbum(getValue(entry, "new_album", "newAlbum")),
	}

	if id := asInt64(getValue(entry, "id_author", "idAuthor")); id > 0 {
		in.Case = CaseExisting
		in.ID = id
		return in
	}

	if asBool(getValue(entry, "is_new_author", "isNewAuthor")) {
		in.Case = CaseNew
		return in
	}

	if in.Name != "" {
		in.Case = CaseLookup
		return in
	}

	in.Case = CaseNone
	return in
}

func albumRef(raw any) *AlbumRef {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	id := asInt64(getValue(m, "id_album", "idAlbum"))
	if id <= 0 {
		return nil
	}
	return &AlbumRef{ID: id}
}

func newAlbum(raw any) *NewAlbum {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	name := strings.TrimSpace(getString(m, "name"))
	if name == "" {
		return nil
	}
	return &NewAlbum{
		Name:    name,
		Image:   getString(m, "image"),
		Premium: getString(m, "premium"),
	}
}

// getValue returns the first present key, mirroring the wire format's fixed
// alias priority.
func getValue(payload map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := payload[key]; ok {
			return v
		}
	}
	return nil
}

func getString(payload map[string]any, keys ...string) string {
	switch v := getValue(payload, keys...).(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(b))
		return s == "true" || s == "1"
	default:
		return false
	}
}
