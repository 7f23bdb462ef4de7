// Package store adapts a single host file, accessed through an afero
// filesystem, into the positioned byte-range read/write contract the rest
// of the engine is built on. There is no caching: every call is a
// positioned read or write against one serialized handle.
package store

import (
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/psatala/vdisk/vdfs"
)

// Device is the backing-store contract every higher layer depends on.
type Device interface {
	ReadAt(offset int64, length int) ([]byte, error)
	WriteAt(offset int64, data []byte) error
	Size() int64
	Close() error
}

// FileStore is a Device backed by one afero.File, opened for the lifetime
// of the engine and never reopened.
type FileStore struct {
	mu   sync.Mutex
	file afero.File
	size int64
}

var _ Device = (*FileStore)(nil)

// Open opens fs/path for read+write, creating it if absent. When the file
// is newly created, it is extended to vdfs.EffectiveSize(requestedSize) by
// writing a single sentinel byte at the last offset. When the file already
// exists, requestedSize is ignored and the geometry is derived from the
// file's current length.
func Open(fs afero.Fs, path string, requestedSize int64) (*FileStore, error) {
	existed, err := afero.Exists(fs, path)
	if err != nil {
		return nil, Fatal(err)
	}

	flag := os.O_RDWR
	if !existed {
		flag |= os.O_CREATE
	}
	f, err := fs.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, Fatal(err)
	}

	s := &FileStore{file: f}

	if !existed {
		size := EffectiveSize(requestedSize)
		if _, err := f.WriteAt([]byte{0}, size-1); err != nil {
			f.Close()
			return nil, Fatal(err)
		}
		s.size = size
		return s, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Fatal(err)
	}
	s.size = info.Size()
	return s, nil
}

// EffectiveSize rounds requested down to a multiple of vdfs.BlockSize and
// clamps it into [vdfs.MinDiskSize, vdfs.MaxDiskSize].
func EffectiveSize(requested int64) int64 {
	if requested <= 0 {
		requested = vdfs.MinDiskSize
	}
	requested -= requested % vdfs.BlockSize
	if requested < vdfs.MinDiskSize {
		requested = vdfs.MinDiskSize
	}
	if requested > vdfs.MaxDiskSize {
		requested = vdfs.MaxDiskSize
	}
	return requested
}

// IsFile reports whether name exists on fs and is not a directory; it does
// not check readability. Used by copy-in to turn a missing host file into
// a user error before any disk state is touched.
func IsFile(fs afero.Fs, name string) bool {
	info, err := fs.Stat(name)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func (s *FileStore) ReadAt(offset int64, length int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, length)
	n, err := s.file.ReadAt(buf, offset)
	if err != nil && n < length {
		return nil, Fatal(vdfs.ErrShortRead)
	}
	return buf, nil
}

func (s *FileStore) WriteAt(offset int64, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.file.WriteAt(data, offset)
	if err != nil {
		return Fatal(err)
	}
	if n != len(data) {
		return Fatal(vdfs.ErrShortRead)
	}
	return nil
}

func (s *FileStore) Size() int64 {
	return s.size
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
