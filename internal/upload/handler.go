package upload

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SignedURLExpiry   = 600 * time.Second
	thumbnailsPrefix  = "posts/"
	defaultObjectType = "application/octet-stream"
)

//go:generate mockgen -source=$GOFILE -destination=upload_mocks_test.go -package=upload_test

type objectStore interface {
	SignedUploadURL(ctx context.Context, objectPath, contentType string, expiry time.Duration) (string, error)
	PublicURL(objectPath string) string
	Remove(ctx context.Context, objectPath string) error
}

type signedURLRequest struct {
	PostID      string `json:"postId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type SignedURLResponse struct {
	SignedURL string `json:"signedUrl"`
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
	ExpiresIn int    `json:"expiresIn"`
}

type deleteThumbnailRequest struct {
	FilePath string `json:"filePath"`
}

type deleteThumbnailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Handler struct {
	store objectStore
}

func NewHandler(store objectStore) *Handler {
	return &Handler{
		store: store,
	}
}

// SetupRoutes registers the routes without method matchers, so that wrong methods get a 405 with a JSON body.
func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/functions/create-signed-upload-url", handler.handleCreateSignedUploadURL).Name("create-signed-upload-url")
	router.HandleFunc("/functions/delete-thumbnail", handler.handleDeleteThumbnail).Name("delete-thumbnail")
}

func (handler *Handler) handleCreateSignedUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "uploadHandler.createSignedUploadURL")
	defer span.End()

	if r.Method != http.MethodPost {
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req signedURLRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PostID == "" || req.Filename == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "postId and filename are required")
		return
	}
	if !isPathSegment(req.PostID) || !isPathSegment(req.Filename) {
		pkg.WriteJSONError(w, http.StatusBadRequest, "postId and filename must be plain names")
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = contentTypeByName(req.Filename)
	}

	objectPath := thumbnailsPrefix + req.PostID + "/" + req.Filename
	span.SetAttributes(attribute.String("object.path", objectPath))

	signedURL, err := handler.store.SignedUploadURL(ctx, objectPath, contentType, SignedURLExpiry)
	if err != nil {
		log.Errorf("create signed upload url for %s: %s", objectPath, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to create signed url")
		return
	}

	log.Debugf("signed upload url created for %s", objectPath)
	pkg.WriteJSON(w, http.StatusOK, SignedURLResponse{
		SignedURL: signedURL,
		Path:      objectPath,
		PublicURL: handler.store.PublicURL(objectPath),
		ExpiresIn: int(SignedURLExpiry.Seconds()),
	})
}

func (handler *Handler) handleDeleteThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "uploadHandler.deleteThumbnail")
	defer span.End()

	if r.Method != http.MethodDelete {
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req deleteThumbnailRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FilePath == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "filePath is required")
		return
	}
	if !IsThumbnailPath(req.FilePath) {
		pkg.WriteJSONError(w, http.StatusBadRequest, "filePath is not a thumbnail path")
		return
	}

	if err := handler.store.Remove(ctx, req.FilePath); err != nil {
		log.Errorf("delete thumbnail %s: %s", req.FilePath, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to delete thumbnail")
		return
	}

	log.Infof("thumbnail deleted: %s", req.FilePath)
	pkg.WriteJSON(w, http.StatusOK, deleteThumbnailResponse{
		Success: true,
		Message: "Thumbnail deleted successfully",
	})
}

// IsThumbnailPath reports whether p has the posts/{postId}/{filename} shape.
func IsThumbnailPath(p string) bool {
	if !strings.HasPrefix(p, thumbnailsPrefix) {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(p, thumbnailsPrefix), "/")
	if len(parts) != 2 {
		return false
	}
	return isPathSegment(parts[0]) && isPathSegment(parts[1])
}

func isPathSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, "/\\")
}

func contentTypeByName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return defaultObjectType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultObjectType
}
