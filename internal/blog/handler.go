package blog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

//go:generate mockgen -source=$GOFILE -destination=blog_mocks_test.go -package=blog_test

type postRepo interface {
	Create(ctx context.Context, newPost NewPost) (*Post, error)
	Get(ctx context.Context, id string) (*Post, error)
	Update(ctx context.Context, id string, patch *Patch) (*Post, error)
	Delete(ctx context.Context, id string) error
	PublishedCount(ctx context.Context) (int, error)
	ListPublished(ctx context.Context, page, size int) ([]*Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*Post, error)
}

type thumbnailStore interface {
	Remove(ctx context.Context, objectPath string) error
	ObjectPath(publicURL string) (string, error)
}

type updatePostRequest struct {
	PostID string `json:"postId"`
	Patch
}

type deletePostRequest struct {
	PostID string `json:"postId"`
}

type PostResponse struct {
	Post *Post `json:"post"`
}

type DeleteResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type PostsResponse struct {
	Posts []*Post `json:"posts"`
	Total int     `json:"total"`
}

type Handler struct {
	repo       postRepo
	thumbnails thumbnailStore
	nowFunc    func() time.Time
}

func NewHandler(repo postRepo, thumbnails thumbnailStore) *Handler {
	return &Handler{
		repo:       repo,
		thumbnails: thumbnails,
		nowFunc:    time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	// privileged, method checks done in the handlers to answer 405 with a JSON body
	router.HandleFunc("/functions/manage-blog-post", handler.handleManagePost).Name("manage-blog-post")
	router.HandleFunc("/functions/manage-blog-post/{postId}", handler.handleManagePost).Name("manage-blog-post-id")
	router.HandleFunc("/functions/create-blog-post", handler.handleCreatePost).Name("create-blog-post")

	// public
	router.HandleFunc("/blog/posts", handler.handleListPublished).Methods("GET").Name("blog-posts")
	router.HandleFunc("/blog/posts/page/{page}/size/{size}", handler.handleListPublished).Methods("GET").Name("blog-posts-page")
	router.HandleFunc("/blog/posts/{slug}", handler.handleGetBySlug).Methods("GET").Name("blog-post")
}

func (handler *Handler) handleManagePost(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		handler.handleUpdatePost(w, r)
	case http.MethodDelete:
		handler.handleDeletePost(w, r)
	default:
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (handler *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.updatePost")
	defer span.End()

	var req updatePostRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		log.Debugf("update blog post, bad body: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	postID := postIDFromPath(r, req.PostID)
	if postID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Post ID is required")
		return
	}
	if !isUUID(postID) {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	span.SetAttributes(attribute.String("post.id", postID))

	if req.Patch.Empty() {
		pkg.WriteJSONError(w, http.StatusBadRequest, ErrEmptyPatch.Error())
		return
	}
	if err := req.Patch.Validate(); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := handler.repo.Update(ctx, postID, &req.Patch)
	switch {
	case errors.Is(err, ErrPostNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Post not found")
		return
	case errors.Is(err, ErrSlugTaken):
		pkg.WriteJSONError(w, http.StatusConflict, "A post with this slug already exists")
		return
	case err != nil:
		log.Errorf("update blog post %s: %s", postID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	log.Infof("blog post %s updated", postID)
	pkg.WriteJSON(w, http.StatusOK, PostResponse{Post: post})
}

func (handler *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.deletePost")
	defer span.End()

	postID := mux.Vars(r)["postId"]
	if postID == "" {
		var req deletePostRequest
		if err := pkg.DecodeJSON(r, &req); err != nil && !errors.Is(err, pkg.ErrEmptyBody) {
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		postID = req.PostID
	}
	if postID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Post ID is required")
		return
	}
	if !isUUID(postID) {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid post id")
		return
	}
	span.SetAttributes(attribute.String("post.id", postID))

	post, err := handler.repo.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Errorf("delete blog post %s, fetch: %s", postID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	handler.removeThumbnail(ctx, post)

	if err := handler.repo.Delete(ctx, postID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Errorf("delete blog post %s: %s", postID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	log.Infof("blog post %s deleted", postID)
	pkg.WriteJSON(w, http.StatusOK, DeleteResponse{
		OK:      true,
		Message: "Blog post deleted successfully",
	})
}

// removeThumbnail is best effort, a dangling object does not block deleting the post.
func (handler *Handler) removeThumbnail(ctx context.Context, post *Post) {
	if post.ThumbnailURL == nil || *post.ThumbnailURL == "" {
		return
	}

	objectPath, err := handler.thumbnails.ObjectPath(*post.ThumbnailURL)
	if err != nil {
		log.Warnf("post %s: cannot derive thumbnail path from %q: %s", post.ID, *post.ThumbnailURL, err)
		return
	}

	if err := handler.thumbnails.Remove(ctx, objectPath); err != nil {
		log.Warnf("post %s: remove thumbnail %s: %s", post.ID, objectPath, err)
		return
	}

	log.Debugf("post %s: thumbnail %s removed", post.ID, objectPath)
}

func (handler *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.createPost")
	defer span.End()

	if r.Method != http.MethodPost {
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var newPost NewPost
	if err := pkg.DecodeJSON(r, &newPost); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := newPost.Normalize(handler.nowFunc()); err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := handler.repo.Create(ctx, newPost)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			pkg.WriteJSONError(w, http.StatusConflict, "A post with this slug already exists")
			return
		}
		log.Errorf("create blog post %q: %s", newPost.Slug, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	log.Infof("blog post %s created: %s", post.ID, post.Slug)
	pkg.WriteJSON(w, http.StatusCreated, PostResponse{Post: post})
}

func (handler *Handler) handleListPublished(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.listPublished")
	defer span.End()

	page, size := 1, DefaultPageSize
	vars := mux.Vars(r)
	if pageParam, ok := vars["page"]; ok {
		var err error
		page, err = strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid page")
			return
		}
		size, err = strconv.Atoi(vars["size"])
		if err != nil || size < 1 || size > MaxPageSize {
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid size")
			return
		}
	}

	total, err := handler.repo.PublishedCount(ctx)
	if err != nil {
		log.Errorf("count published posts: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to get posts")
		return
	}

	posts, err := handler.repo.ListPublished(ctx, page, size)
	if err != nil {
		log.Errorf("list published posts, page %d size %d: %s", page, size, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to get posts")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, PostsResponse{
		Posts: posts,
		Total: total,
	})
}

func (handler *Handler) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "blogHandler.getBySlug")
	defer span.End()

	slug := mux.Vars(r)["slug"]
	post, err := handler.repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			pkg.WriteJSONError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Errorf("get post %q: %s", slug, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to get post")
		return
	}

	pkg.WriteJSON(w, http.StatusOK, PostResponse{Post: post})
}

// postIDFromPath prefers the trailing path segment over the id in the body.
func postIDFromPath(r *http.Request, fromBody string) string {
	if id := mux.Vars(r)["postId"]; id != "" {
		return id
	}
	return fromBody
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
