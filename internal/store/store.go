// Package store provides persistent key-value document storage
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned when no document is stored under given key
	ErrNotFound = errors.New("document not found")
	// ErrInvalidKey is returned when key contains characters not allowed in document names
	ErrInvalidKey = errors.New("invalid document key")
)

var keySegment = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// CorruptError is returned when stored document bytes cannot be decoded
type CorruptError struct {
	Key string
	Err error
}

// Error implementation
func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt document %s: %v", e.Key, e.Err)
}

// Unwrap returns decoding error
func (e *CorruptError) Unwrap() error {
	return e.Err
}

// IsCorrupt returns true if err is or wraps CorruptError
func IsCorrupt(err error) bool {
	var c *CorruptError

	return errors.As(err, &c)
}

// Store is implemented by document storage backends.
// Documents are whole JSON values, keys are slash-separated names.
type Store interface {
	// Get decodes document into v, returns ErrNotFound or *CorruptError
	Get(key string, v interface{}) error
	// Put overwrites document with encoded v
	Put(key string, v interface{}) error
	// Raw returns stored document bytes
	Raw(key string) ([]byte, error)
	// Delete removes document, missing document is not an error
	Delete(key string) error
	// Keys lists stored keys starting with prefix in sorted order
	Keys(prefix string) ([]string, error)
}

// ValidateKey checks that every key segment is a plain name
func ValidateKey(key string) error {
	for _, s := range strings.Split(key, "/") {
		if !keySegment.MatchString(s) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}

	return nil
}

func encode(v interface{}) ([]byte, error) {
	bs, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return nil, err
	}

	return append(bs, '\n'), nil
}

func decode(key string, bs []byte, v interface{}) error {
	err := json.Unmarshal(bs, v)
	if err != nil {
		return &CorruptError{
			Key: key,
			Err: err,
		}
	}

	return nil
}
