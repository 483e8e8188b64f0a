package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/MrSnakeDoc/reelmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	"github.com/MrSnakeDoc/reelmark/internal/thumbnail"
)

type dataURLRequest struct {
	DataURL string `json:"dataUrl"`
}

// Thumbnail compresses an uploaded image (multipart field "image", or a JSON
// body {"dataUrl": ...}) and returns the result.
func Thumbnail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := compressUpload(w, r, d)
		if err != nil {
			failUpload(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func compressUpload(w http.ResponseWriter, r *http.Request, d deps.Deps) (thumbnail.Result, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		res thumbnail.Result
		err error
	)
	switch mediaType {
	case "application/json":
		var req dataURLRequest
		if err := decodeLimit(w, r, &req, dataURLLimit(d.MaxUploadBytes)); err != nil {
			return thumbnail.Result{}, errBadUpload{err}
		}
		res, err = d.Thumbnails.CompressDataURL(req.DataURL)
	case "multipart/form-data":
		raw, rerr := readImageField(w, r, d.MaxUploadBytes)
		if rerr != nil {
			return thumbnail.Result{}, rerr
		}
		res, err = d.Thumbnails.Compress(raw)
	default:
		return thumbnail.Result{}, errBadUpload{fmt.Errorf("unsupported content type %q", mediaType)}
	}
	if err != nil {
		return thumbnail.Result{}, err
	}

	if res.OverBudget {
		d.Logger.Warn("thumbnail exceeds budget",
			logger.Int("bytes", res.Bytes),
			logger.Int("budget", thumbnail.BudgetBytes),
			logger.Bool("passthrough", res.Passthrough))
	}
	return res, nil
}

// dataURLLimit is the JSON body size that carries a maxUpload-byte image as
// base64, plus room for the data URL prefix and the JSON wrapping.
func dataURLLimit(maxUpload int64) int64 {
	return (maxUpload+2)/3*4 + 1024
}

func readImageField(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, errBadUpload{err}
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, errBadUpload{fmt.Errorf("missing image field: %w", err)}
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, errBadUpload{err}
	}
	return raw, nil
}

// errBadUpload marks client-side upload problems.
type errBadUpload struct{ err error }

func (e errBadUpload) Error() string { return e.err.Error() }
func (e errBadUpload) Unwrap() error { return e.err }

func failUpload(w http.ResponseWriter, d deps.Deps, err error) {
	var (
		bad    errBadUpload
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit), "image")
	case errors.As(err, &bad):
		writeError(w, http.StatusBadRequest, bad.Error(), "image")
	default:
		fail(w, d.Logger, err)
	}
}
