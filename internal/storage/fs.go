package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrBadKey = errors.New("storage: invalid key")

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

// path resolves key under base; keys may not climb out of it.
func (s *FSStore) path(key string) (dst, canonical string, err error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	clean = strings.TrimPrefix(clean, string(filepath.Separator))
	if key == "" || clean == "" || clean == "." {
		return "", "", ErrBadKey
	}
	return filepath.Join(s.base, clean), filepath.ToSlash(clean), nil
}

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	dst, canonical, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return canonical, nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	p, _, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}
