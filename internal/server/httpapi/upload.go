package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/uuid/v5"
)

// maxCoverBytes caps uploaded cover images at 5 MB.
const maxCoverBytes = 5 << 20

// Detected content type -> stored extension.
var coverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

var errBadImageType = errors.New("unsupported image type")

// CoverStore saves uploaded cover images to a local directory and hands out
// retrievable URLs. The rest of the system treats it purely as
// "given a file, obtain a URL reference".
type CoverStore struct {
	dir string
}

// NewCoverStore creates the uploads directory if needed.
func NewCoverStore(dir string) (*CoverStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &CoverStore{dir: dir}, nil
}

// Dir returns the directory files are stored in.
func (cs *CoverStore) Dir() string { return cs.dir }

// Save sniffs the content type, writes the file under a random name and
// returns the URL path it is served from.
func (cs *CoverStore) Save(src io.Reader) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]

	ext, ok := coverTypes[http.DetectContentType(head)]
	if !ok {
		return "", errBadImageType
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("cover-%s%s", id, ext)

	f, err := os.Create(filepath.Join(cs.dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(head); err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	// The size limit applies to the file part; the request cap leaves room
	// for multipart framing so a file of exactly the limit still fits.
	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes+64<<10)

	file, header, err := r.FormFile("cover")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, `file field "cover" is required and must be at most 5 MB`)
		return
	}
	defer file.Close()
	if header.Size > maxCoverBytes {
		writeError(w, http.StatusBadRequest, codeValidation, "cover image must be at most 5 MB")
		return
	}

	url, err := s.covers.Save(file)
	if err != nil {
		if errors.Is(err, errBadImageType) {
			writeError(w, http.StatusBadRequest, codeValidation, "only jpeg, png, webp and gif images are accepted")
			return
		}
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
