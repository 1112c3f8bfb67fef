package composer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// FileLoader decodes image sources from a file system. A source is either
// a slash-separated path relative to the root or an inline "data:" URI.
// PNG, JPEG, GIF, BMP and WebP are recognized.
type FileLoader struct {
	FS fs.FS
}

// NewFileLoader returns a loader rooted at dir on the local disk.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{FS: os.DirFS(dir)}
}

// Load implements AssetLoader.
func (l *FileLoader) Load(ctx context.Context, key string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	var err error
	if strings.HasPrefix(key, "data:") {
		data, err = decodeDataURI(key)
	} else {
		data, err = fs.ReadFile(l.FS, cleanSourcePath(key))
	}
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// cleanSourcePath turns "/a/b.png", "./a/b.png" and "a/../a/b.png" into the
// fs.FS form "a/b.png".
func cleanSourcePath(p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimPrefix(p, "/")
}

// decodeDataURI extracts the payload of "data:[<mediatype>][;base64],<data>".
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("data uri: missing ','")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri: %w", err)
	}
	return []byte(s), nil
}
