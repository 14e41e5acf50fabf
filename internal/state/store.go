// Package state persists the mapping between mount points and the LUKS
// volumes mounted on them. Each record lives in its own file under a
// runtime directory that is expected to be cleared on reboot.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const (
	// DefaultDir is the runtime directory holding the records.
	DefaultDir = "/run/luksctl"

	dirPerm        = 0o700
	filePerm       = 0o600
	maxRecordBytes = 1024
	tempPrefix     = ".tmp-"
)

var (
	// ErrNotFound is returned when no record exists for a mount point.
	ErrNotFound = errors.New("state record not found")
	// ErrExists is returned by Put when a record already exists for the key.
	ErrExists = errors.New("state record already exists")
	// ErrUnavailable is returned when the state directory is missing or unusable.
	ErrUnavailable = errors.New("state store unavailable")
	// ErrCorrupt is returned for records that fail to parse or validate.
	ErrCorrupt = errors.New("corrupt state record")
)

// RecordError is yielded by List for a record that cannot be read.
// MountPoint is decoded from the file name and is empty when the name
// does not decode.
type RecordError struct {
	MountPoint string
	File       string
	Err        error
}

func (e *RecordError) Error() string {
	return e.Err.Error()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Store is a file-per-record key-value store keyed by mount point.
// Writes go through a temporary file and a rename, so readers observe
// either the whole record or none of it.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a store rooted at dir on fsys.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Ready creates the state directory if needed and checks that it accepts
// writes.
func (s *Store) Ready() error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	probe, err := afero.TempFile(s.fs, s.dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %w", ErrUnavailable, s.dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	if err := s.fs.Remove(name); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, s.dir, err)
	}
	return nil
}

// Put stores rec under rec.MountPoint. It refuses to overwrite an existing
// record; callers remove the old one first.
func (s *Store) Put(rec Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid record: %w", err)
	}
	file, err := s.file(rec.MountPoint)
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	if _, err := s.lstat(file); err == nil {
		return fmt.Errorf("%w: %s", ErrExists, rec.MountPoint)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	return s.writeAtomic(file, data)
}

// Get returns the record stored for mountPoint.
func (s *Store) Get(mountPoint string) (Record, error) {
	file, err := s.file(mountPoint)
	if err != nil {
		return Record{}, err
	}
	if err := s.checkDir(); err != nil {
		return Record{}, err
	}

	rec, err := s.read(file)
	if err != nil {
		return Record{}, err
	}
	if path.Clean(rec.MountPoint) != path.Clean(mountPoint) {
		return Record{}, fmt.Errorf("%w: %s holds a record for %s", ErrCorrupt, file, rec.MountPoint)
	}
	return rec, nil
}

// Remove deletes the record for mountPoint. Removing a missing record is
// not an error.
func (s *Store) Remove(mountPoint string) error {
	file, err := s.file(mountPoint)
	if err != nil {
		return err
	}

	info, err := s.lstat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrCorrupt, file)
	}

	if err := s.fs.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove state record %s: %w", file, err)
	}
	return nil
}

// List yields every record currently stored. Each call rescans the
// directory. Unreadable records are yielded as errors and the scan goes
// on; a missing directory yields nothing.
func (s *Store) List() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		entries, err := afero.ReadDir(s.fs, s.dir)
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			yield(Record{}, fmt.Errorf("%w: %w", ErrUnavailable, err))
			return
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, tempPrefix) || !strings.HasSuffix(name, recordSuffix) {
				continue
			}

			file := path.Join(s.dir, name)
			key, keyErr := unescapeKey(name)
			rec, err := s.read(file)
			if err == nil && (keyErr != nil || key != path.Clean(rec.MountPoint)) {
				err = fmt.Errorf("%w: %s holds a record for %s", ErrCorrupt, name, rec.MountPoint)
			}
			if errors.Is(err, ErrNotFound) {
				// removed between ReadDir and read
				continue
			}
			if err != nil {
				err = &RecordError{MountPoint: key, File: file, Err: err}
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (s *Store) file(mountPoint string) (string, error) {
	name, err := escapeKey(mountPoint)
	if err != nil {
		return "", err
	}
	return path.Join(s.dir, name), nil
}

func (s *Store) ensureDir() error {
	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", ErrUnavailable, s.dir, err)
	}
	if err := s.checkDir(); err != nil {
		return err
	}
	if err := s.fs.Chmod(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: failed to restrict %s: %w", ErrUnavailable, s.dir, err)
	}
	return nil
}

func (s *Store) checkDir() error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnavailable, s.dir)
	}
	return nil
}

func (s *Store) lstat(name string) (os.FileInfo, error) {
	if lst, ok := s.fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(name)
		return info, err
	}
	return s.fs.Stat(name)
}

func (s *Store) read(file string) (Record, error) {
	info, err := s.lstat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !info.Mode().IsRegular() {
		return Record{}, fmt.Errorf("%w: %s is not a regular file", ErrCorrupt, file)
	}

	f, err := s.fs.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxRecordBytes+1))
	if err != nil {
		return Record{}, fmt.Errorf("%w: failed to read %s: %w", ErrUnavailable, file, err)
	}
	if len(data) > maxRecordBytes {
		return Record{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrCorrupt, file, maxRecordBytes)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, file, err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, file, err)
	}
	return rec, nil
}

func (s *Store) writeAtomic(file string, data []byte) (err error) {
	tmp, err := afero.TempFile(s.fs, s.dir, tempPrefix)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = s.fs.Remove(tmpName)
		}
	}()

	if err = s.fs.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("failed to restrict %s: %w", tmpName, err)
	}
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write state record: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync state record: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state record: %w", err)
	}
	if err = s.fs.Rename(tmpName, file); err != nil {
		return fmt.Errorf("failed to publish state record: %w", err)
	}
	return nil
}
