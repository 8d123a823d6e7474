package category

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const publicListCacheKey = "categories::all"

//go:generate mockgen -source=$GOFILE -destination=category_mocks_test.go -package=category_test

type categoryRepo interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, nc NewCategory) (*Category, error)
	Update(ctx context.Context, id string, upd Update) (*Category, error)
	Delete(ctx context.Context, ids []string) (int64, error)
}

type responseCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

type actionRequest struct {
	Action   string       `json:"action"`
	Category *NewCategory `json:"category"`
	ID       string       `json:"id"`
	IDs      []string     `json:"ids"`
	Updates  *Update      `json:"updates"`
}

type ListResponse struct {
	Categories []*Category `json:"categories"`
}

type CategoryResponse struct {
	Category *Category `json:"category"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type Handler struct {
	repo  categoryRepo
	cache responseCache
}

func NewHandler(repo categoryRepo, cache responseCache) *Handler {
	return &Handler{
		repo:  repo,
		cache: cache,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/functions/manage-categories", handler.handleManageCategories).Name("manage-categories")
	router.HandleFunc("/categories", handler.handlePublicList).Methods("GET").Name("categories")
}

func (handler *Handler) handleManageCategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "categoryHandler.manage")
	defer span.End()

	if r.Method != http.MethodPost {
		pkg.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req actionRequest
	if err := pkg.DecodeJSON(r, &req); err != nil {
		log.Debugf("manage categories, bad body: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.String("action", req.Action))

	switch req.Action {
	case "":
		pkg.WriteJSONError(w, http.StatusBadRequest, "Missing action")
	case "list":
		handler.list(ctx, w)
	case "create":
		handler.create(ctx, w, req)
	case "update":
		handler.update(ctx, w, req)
	case "delete":
		handler.delete(ctx, w, req)
	default:
		pkg.WriteJSONError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
	}
}

func (handler *Handler) list(ctx context.Context, w http.ResponseWriter) {
	categories, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list categories: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	pkg.WriteJSON(w, http.StatusOK, ListResponse{Categories: categories})
}

func (handler *Handler) create(ctx context.Context, w http.ResponseWriter, req actionRequest) {
	if req.Category == nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "name and slug are required")
		return
	}
	nc := *req.Category
	nc.Name = strings.TrimSpace(nc.Name)
	nc.Slug = strings.TrimSpace(nc.Slug)
	if nc.Name == "" || nc.Slug == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "name and slug are required")
		return
	}

	c, err := handler.repo.Create(ctx, nc)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			pkg.WriteJSONError(w, http.StatusConflict, "A category with this slug already exists")
			return
		}
		log.Errorf("create category %q: %s", nc.Slug, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to create category")
		return
	}

	handler.invalidate()
	log.Infof("category %s created: %s", c.ID, c.Slug)
	pkg.WriteJSON(w, http.StatusOK, CategoryResponse{Category: c})
}

func (handler *Handler) update(ctx context.Context, w http.ResponseWriter, req actionRequest) {
	if req.ID == "" || req.Updates == nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, "id and updates are required")
		return
	}
	if !isUUID(req.ID) {
		pkg.WriteJSONError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	upd := *req.Updates
	for _, field := range []*string{upd.Name, upd.Slug} {
		if field != nil && strings.TrimSpace(*field) == "" {
			pkg.WriteJSONError(w, http.StatusBadRequest, "name and slug cannot be empty")
			return
		}
	}

	c, err := handler.repo.Update(ctx, req.ID, upd)
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Category not found")
		return
	case errors.Is(err, ErrSlugTaken):
		pkg.WriteJSONError(w, http.StatusConflict, "A category with this slug already exists")
		return
	case err != nil:
		log.Errorf("update category %s: %s", req.ID, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	handler.invalidate()
	log.Infof("category %s updated", c.ID)
	pkg.WriteJSON(w, http.StatusOK, CategoryResponse{Category: c})
}

func (handler *Handler) delete(ctx context.Context, w http.ResponseWriter, req actionRequest) {
	ids := deleteIDs(req.ID, req.IDs)
	if len(ids) == 0 {
		pkg.WriteJSONError(w, http.StatusBadRequest, "id or ids is required")
		return
	}
	for _, id := range ids {
		if !isUUID(id) {
			pkg.WriteJSONError(w, http.StatusBadRequest, "invalid category id")
			return
		}
	}

	deleted, err := handler.repo.Delete(ctx, ids)
	if err != nil {
		log.Errorf("delete categories %v: %s", ids, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to delete categories")
		return
	}

	handler.invalidate()
	log.Infof("deleted %d of %d requested categories", deleted, len(ids))
	pkg.WriteJSON(w, http.StatusOK, okResponse{OK: true})
}

func (handler *Handler) handlePublicList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "categoryHandler.publicList")
	defer span.End()

	if cached, ok := handler.cache.Get(publicListCacheKey); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, cached)
		return
	}

	categories, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("public categories list: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	respBytes, err := json.Marshal(ListResponse{Categories: categories})
	if err != nil {
		log.Errorf("marshal categories: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	handler.cache.Set(publicListCacheKey, respBytes)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

func (handler *Handler) invalidate() {
	handler.cache.Delete(publicListCacheKey)
}

// deleteIDs merges id and ids, dropping empties and duplicates.
func deleteIDs(id string, ids []string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, candidate := range append([]string{id}, ids...) {
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		merged = append(merged, candidate)
	}
	return merged
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
