package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".json"

// File stores every document as pretty-printed json file under Dir
type File struct {
	Dir string
}

// NewFile returns file store rooted at dir, creating it when missing
func NewFile(dir string) (*File, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, err
	}

	return &File{
		Dir: dir,
	}, nil
}

func (f *File) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	return filepath.Join(f.Dir, filepath.FromSlash(key)+fileExt), nil
}

// Raw returns stored document bytes
func (f *File) Raw(key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	bs, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}

	return bs, err
}

// Get decodes document into v
func (f *File) Get(key string, v interface{}) error {
	bs, err := f.Raw(key)
	if err != nil {
		return err
	}

	return decode(key, bs, v)
}

// Put replaces document file with encoded v using temporary file and rename
func (f *File) Put(key string, v interface{}) (err error) {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	bs, err := encode(v)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p)

	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	_, err = tmp.Write(bs)
	if err != nil {
		_ = tmp.Close()

		return err
	}

	err = tmp.Close()
	if err != nil {
		return err
	}

	return os.Rename(tmp.Name(), p)
}

// Delete removes document file
func (f *File) Delete(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// Keys lists document keys with given prefix
func (f *File) Keys(prefix string) (keys []string, err error) {
	err = filepath.WalkDir(f.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			return nil
		}

		rel, err := filepath.Rel(f.Dir, p)
		if err != nil {
			return err
		}

		key := filepath.ToSlash(strings.TrimSuffix(rel, fileExt))
		if strings.HasPrefix(key, prefix) && ValidateKey(key) == nil {
			keys = append(keys, key)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)

	return keys, nil
}
