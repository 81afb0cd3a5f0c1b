package archiver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/datatogether/archivertools/archiverdb"
)

// ErrEmptyContent is returned when AddFile is given no bytes to stage.
var ErrEmptyContent = errors.New("file content is empty")

// hashBufferSize keeps hashing of large local files memory-efficient.
const hashBufferSize = 64 * 1024

// AddFile stages a file for ingestion: content is hashed with SHA-256 and
// stored under filename. When filename is empty a descriptive name is
// generated from the content hash with an extension sniffed from the
// bytes. comments may describe encoding, format, or how the data was
// extracted.
func (a *Archiver) AddFile(content []byte, filename, comments string) error {
	if len(content) == 0 {
		return ErrEmptyContent
	}
	hash := hashBytes(content)
	if filename == "" {
		filename = fallbackName(content, hash)
	}
	_, err := a.db.AddFile(&archiverdb.File{
		RunID:     a.runID,
		Contents:  content,
		Filename:  filename,
		SHA256:    hash,
		Comments:  comments,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	a.logger.Info("Staged file", "filename", filename, "sha256", hash, "bytes", len(content))
	return nil
}

// AddFilePath stages a local file under its base name. The hash is
// computed through a fixed-size buffer before the contents are read, so a
// large file never passes through the hasher in one allocation.
func (a *Archiver) AddFilePath(path, comments string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("Unable to open file %s: %v", path, err)
	}
	defer f.Close()

	hash, err := hashReader(f)
	if err != nil {
		return fmt.Errorf("Unable to hash file %s: %v", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("Unable to rewind file %s: %v", path, err)
	}
	content, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("Unable to read file %s: %v", path, err)
	}
	if len(content) == 0 {
		return ErrEmptyContent
	}
	_, err = a.db.AddFile(&archiverdb.File{
		RunID:     a.runID,
		Contents:  content,
		Filename:  filepath.Base(path),
		SHA256:    hash,
		Comments:  comments,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	a.logger.Info("Staged file", "filename", filepath.Base(path), "sha256", hash, "bytes", len(content))
	return nil
}

// hashBytes returns the hex SHA-256 digest of b.
func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// hashReader returns the hex SHA-256 digest of r, read in
// hashBufferSize chunks.
func hashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.CopyBuffer(h, r, make([]byte, hashBufferSize)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// fallbackName builds a descriptive filename for content staged without
// one: a short prefix of the hash plus an extension sniffed from the
// bytes. Deterministic for fixed content.
func fallbackName(content []byte, hash string) string {
	return "file_" + hash[:12] + sniffExtension(content)
}

// sniffExtension maps the detected media type to a filename extension,
// falling back to .bin for anything unrecognized.
func sniffExtension(content []byte) string {
	ctype := http.DetectContentType(content)
	mediatype, _, err := mime.ParseMediaType(ctype)
	if err != nil {
		return ".bin"
	}
	switch mediatype {
	case "text/plain":
		return ".txt"
	case "text/html":
		return ".html"
	case "text/xml":
		return ".xml"
	case "application/pdf":
		return ".pdf"
	case "application/zip":
		return ".zip"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	}
	return ".bin"
}
