// Package cache persists the fetch snapshot as two JSON artifacts under a
// local directory: the category map (text keys) and a {fetched_at, posts}
// envelope of raw posts. The snapshot is replaced wholly on every
// successful refresh and read back at cold start.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

const (
	categoriesFile = "categories.json"
	postsFile      = "posts.json"
)

// envelope is the on-disk shape of the posts artifact.
type envelope struct {
	FetchedAt string            `json:"fetched_at"`
	Posts     []json.RawMessage `json:"posts"`
}

// Store reads and writes the snapshot directory.
type Store struct {
	dir string
}

// New creates a Store rooted at dir. The directory is created lazily on
// the first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save replaces the snapshot with the given category table and raw posts.
// Both artifacts are staged to temp files first and renamed into place, so
// a failed save leaves the previous snapshot untouched.
func (s *Store) Save(categories map[int64]string, posts []json.RawMessage, fetchedAt string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	cats := make(map[string]string, len(categories))
	for id, name := range categories {
		cats[strconv.FormatInt(id, 10)] = name
	}
	catData, err := json.Marshal(cats)
	if err != nil {
		return fmt.Errorf("encoding category map: %w", err)
	}

	env := envelope{FetchedAt: fetchedAt, Posts: posts}
	if env.Posts == nil {
		env.Posts = []json.RawMessage{}
	}
	postData, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding posts: %w", err)
	}

	catTmp, err := s.stage(categoriesFile, catData)
	if err != nil {
		return fmt.Errorf("writing category map: %w", err)
	}
	postTmp, err := s.stage(postsFile, postData)
	if err != nil {
		os.Remove(catTmp)
		return fmt.Errorf("writing posts: %w", err)
	}

	if err := os.Rename(catTmp, filepath.Join(s.dir, categoriesFile)); err != nil {
		os.Remove(postTmp)
		return fmt.Errorf("replacing category map: %w", err)
	}
	if err := os.Rename(postTmp, filepath.Join(s.dir, postsFile)); err != nil {
		return fmt.Errorf("replacing posts: %w", err)
	}

	return nil
}

// stage writes data to a temp file in the snapshot directory and returns
// its path.
func (s *Store) stage(name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// Load reads the snapshot back. When either artifact is missing or fails
// to parse, all results are absent; Load never reports an error. Category
// keys that do not coerce back to integers are dropped.
func (s *Store) Load() (map[int64]string, []json.RawMessage, string) {
	catData, err := os.ReadFile(filepath.Join(s.dir, categoriesFile))
	if err != nil {
		return nil, nil, ""
	}
	postData, err := os.ReadFile(filepath.Join(s.dir, postsFile))
	if err != nil {
		return nil, nil, ""
	}

	var rawCats map[string]string
	if err := json.Unmarshal(catData, &rawCats); err != nil {
		return nil, nil, ""
	}
	var env envelope
	if err := json.Unmarshal(postData, &env); err != nil {
		return nil, nil, ""
	}

	categories := make(map[int64]string, len(rawCats))
	for k, v := range rawCats {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		categories[id] = v
	}

	return categories, env.Posts, env.FetchedAt
}

// Clear removes both snapshot artifacts. Missing files are not an error.
func (s *Store) Clear() error {
	for _, name := range []string{categoriesFile, postsFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", name, err)
		}
	}
	return nil
}
