package file

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"commission-tracker/internal/domain"
	"commission-tracker/internal/http-server/handler/response"
	"commission-tracker/internal/usecase/processor/operations"

	"github.com/go-chi/chi/v5"
	"github.com/wb-go/wbf/zlog"
)

const cacheControl = "public, max-age=604800"

type FileHandler struct {
	usecase fileUsecase
	logger  *zlog.Zerolog
}

func NewFileHandler(usecase fileUsecase, logger *zlog.Zerolog) *FileHandler {
	return &FileHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// GetFile streams a stored object. width, height and quality render images
// as JPEG unless raw=true; PDFs are always returned as stored.
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		response.Error(w, h.logger, ErrMissingKey)
		return
	}

	params, err := parseResizeParams(r.URL.Query())
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}

	obj, err := h.usecase.Fetch(r.Context(), key, params)
	if err != nil {
		response.Error(w, h.logger, err)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to stream file")
	}
}

func parseResizeParams(q url.Values) (operations.ResizeParams, error) {
	var params operations.ResizeParams

	if v := q.Get("width"); v != "" {
		width, err := strconv.Atoi(v)
		if err != nil || width <= 0 || width > domain.MaxTransformDimension {
			return params, ErrInvalidWidth
		}
		params.Width = width
	}

	if v := q.Get("height"); v != "" {
		height, err := strconv.Atoi(v)
		if err != nil || height <= 0 || height > domain.MaxTransformDimension {
			return params, ErrInvalidHeight
		}
		params.Height = height
	}

	if v := q.Get("quality"); v != "" {
		quality, err := strconv.Atoi(v)
		if err != nil || quality < 1 || quality > 100 {
			return params, ErrInvalidQuality
		}
		params.Quality = quality
	}

	if strings.EqualFold(q.Get("raw"), "true") {
		return operations.ResizeParams{}, nil
	}

	return params, nil
}
