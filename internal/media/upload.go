package media

import (
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// Upload - загруженный файл до сохранения в хранилище
type Upload struct {
	Filename string
	Data     []byte
}

func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}

// MIME определяет тип по содержимому, а не по имени файла
func (u *Upload) MIME() string {
	return mimetype.Detect(u.Data).String()
}

// ReadUpload reads at most limit+1 bytes so callers can tell an oversized
// file apart from one that is exactly at the limit without buffering it all.
func ReadUpload(filename string, r io.Reader, limit int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("could not read upload %s: %w", filename, err)
	}
	return &Upload{Filename: filename, Data: data}, nil
}

// Is reports whether the detected type is one of types.
func (u *Upload) Is(types ...string) bool {
	detected := mimetype.Detect(u.Data)
	for _, t := range types {
		if detected.Is(t) {
			return true
		}
	}
	return false
}

// Extension returns the extension matching the detected type, with the dot.
func (u *Upload) Extension() string {
	return mimetype.Detect(u.Data).Extension()
}
