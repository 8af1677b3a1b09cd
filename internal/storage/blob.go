package storage

import "io"

// BlobStore keeps generated artifacts (error exports) by key.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
