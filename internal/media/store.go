package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

const (
	MaxSizeKB = 2048
	// Имена каталогов для полей с файлами
	DirPosts   = "posts"
	DirAvatars = "avatars"
)

// AcceptedTypes are the only MIME types image fields take.
var AcceptedTypes = []string{"image/jpeg", "image/png"}

var (
	ErrTooLarge    = errors.New("file is too large")
	ErrInvalidType = errors.New("file type is not allowed")
)

type Store interface {
	Store(ctx context.Context, upload *Upload, directory string) (string, error)
	Delete(ctx context.Context, path string) error
}

// DiskStore keeps files on an afero filesystem rooted at the public disk.
type DiskStore struct {
	fs        afero.Fs
	maxBytes  int64
	acceptAny []string
}

func NewDiskStore(fs afero.Fs) *DiskStore {
	return &DiskStore{
		fs:        fs,
		maxBytes:  MaxSizeKB * 1024,
		acceptAny: AcceptedTypes,
	}
}

// NewOSDiskStore stores under root on the local filesystem.
func NewOSDiskStore(root string) *DiskStore {
	return NewDiskStore(afero.NewBasePathFs(afero.NewOsFs(), root))
}

func (s *DiskStore) Fs() afero.Fs {
	return s.fs
}

func (s *DiskStore) Store(ctx context.Context, upload *Upload, directory string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if upload == nil || upload.Size() == 0 {
		return "", fmt.Errorf("empty upload")
	}
	if upload.Size() > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, upload.Size(), s.maxBytes)
	}
	if !upload.Is(s.acceptAny...) {
		return "", fmt.Errorf("%w: %s", ErrInvalidType, upload.MIME())
	}

	directory = strings.Trim(path.Clean("/"+directory), "/")
	if directory == "" {
		return "", fmt.Errorf("directory is required")
	}

	name, err := randomName()
	if err != nil {
		return "", err
	}
	stored := path.Join(directory, name+upload.Extension())

	if err := s.fs.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("could not create directory %s: %w", directory, err)
	}
	if err := afero.WriteFile(s.fs, stored, upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("could not write file %s: %w", stored, err)
	}

	return stored, nil
}

func (s *DiskStore) Delete(ctx context.Context, stored string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(stored)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete file %s: %w", stored, err)
	}
	return nil
}

// случайное имя из 40 hex символов
func randomName() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate file name: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
