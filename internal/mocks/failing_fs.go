package mocks

import (
	"errors"
	"os"
	"sync"

	"github.com/spf13/afero"
)

var ErrDiskFull = errors.New("no space left on device")

// FailingFs is an afero.Fs whose files accept FailAfter writes and then
// return ErrDiskFull. A non-nil CloseErr is returned from every Close.
type FailingFs struct {
	afero.Fs
	FailAfter int
	CloseErr  error

	mu     sync.Mutex
	writes int
}

func NewFailingFs(failAfter int) *FailingFs {
	return &FailingFs{Fs: afero.NewMemMapFs(), FailAfter: failAfter}
}

func (f *FailingFs) Create(name string) (afero.File, error) {
	file, err := f.Fs.Create(name)
	if err != nil {
		return nil, err
	}
	return &failingFile{File: file, fs: f}, nil
}

func (f *FailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &failingFile{File: file, fs: f}, nil
}

func (f *FailingFs) allow() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes++
	return f.writes <= f.FailAfter
}

type failingFile struct {
	afero.File
	fs *FailingFs
}

func (f *failingFile) Write(p []byte) (int, error) {
	if !f.fs.allow() {
		return 0, ErrDiskFull
	}
	return f.File.Write(p)
}

func (f *failingFile) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

func (f *failingFile) Close() error {
	if err := f.File.Close(); err != nil {
		return err
	}
	return f.fs.CloseErr
}
