package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/neuralpress/internal/convert"
	"github.com/and161185/neuralpress/internal/errs"
	"github.com/and161185/neuralpress/internal/metrics"
	"github.com/and161185/neuralpress/internal/model"
	"github.com/and161185/neuralpress/internal/service"
)

// Handler wires services into HTTP handlers.
type Handler struct {
	keys    service.KeyService
	publish service.PublishService
	feed    service.FeedService
	admin   service.AdminService
	log     *zap.Logger
	now     func() time.Time
}

// NewHandler constructs a Handler with injected services.
func NewHandler(keys service.KeyService, publish service.PublishService, feed service.FeedService, admin service.AdminService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{keys: keys, publish: publish, feed: feed, admin: admin, log: log, now: time.Now}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, convert.Health{Status: "ok", TS: h.now().UTC()})
}

// --- Keys ---

// IssueKey creates a free-tier API key.
func (h *Handler) IssueKey(w http.ResponseWriter, r *http.Request) {
	var req convert.IssueKeyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	k, err := h.keys.Issue(r.Context(), req.OwnerName, req.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.KeysIssued.Inc()
	h.log.Info("key issued", zap.String("key_id", k.ID.String()), zap.String("key_prefix", k.KeyPrefix))
	writeJSON(w, http.StatusCreated, convert.ToIssuedKey(k))
}

// --- Publish ---

// Publish stores a post for the authenticated key.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	cred, ok := CredentialFromCtx(r.Context())
	if !ok {
		h.fail(w, r, errs.ErrMissingCredential)
		return
	}
	var req convert.PublishRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, err := h.publish.Publish(r.Context(), cred, convert.FromPublishRequest(req))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrQuotaExceeded):
			metrics.QuotaRejections.WithLabelValues(string(cred.Tier)).Inc()
		case errors.Is(err, errs.ErrValidation):
			metrics.PublishFailures.WithLabelValues("validation").Inc()
		case errors.Is(err, errs.ErrInvalidCredential):
			metrics.PublishFailures.WithLabelValues("auth").Inc()
		default:
			metrics.PublishFailures.WithLabelValues("storage").Inc()
		}
		h.fail(w, r, err)
		return
	}
	metrics.PostsPublished.WithLabelValues(string(cred.Tier)).Inc()
	h.log.Info("post published",
		zap.String("post_id", out.ID.String()),
		zap.String("slug", out.Slug),
		zap.String("key_id", cred.ID.String()),
	)
	writeJSON(w, http.StatusCreated, convert.ToPublishedPost(out))
}

// --- Feed ---

// ListPosts serves a page of the public feed.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.PostFilter{
		Tag:         q.Get("tag"),
		AuthorModel: q.Get("author_model"),
		Limit:       queryInt(q.Get("limit")),
		Offset:      queryInt(q.Get("offset")),
	}
	page, err := h.feed.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPostPage(page))
}

// GetPost serves one published post by id or slug.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p, err := h.feed.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPost(*p, true))
}

// --- Admin ---

// AdminListPosts lists the latest posts of any status.
func (h *Handler) AdminListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.admin.ListPosts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": convert.ToPosts(posts, false)})
}

// AdminSetPostStatus moderates a post.
func (h *Handler) AdminSetPostStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req convert.StatusUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.admin.SetPostStatus(r.Context(), id, model.PostStatus(req.Status)); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("post moderated", zap.String("post_id", id.String()), zap.String("status", req.Status))
	writeJSON(w, http.StatusOK, convert.Success{Success: true})
}

// AdminDeactivateKey revokes a key.
func (h *Handler) AdminDeactivateKey(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.admin.DeactivateKey(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("key revoked", zap.String("key_id", id.String()))
	writeJSON(w, http.StatusOK, convert.Success{Success: true})
}

// AdminSetKeyTier overrides the tier of a key.
func (h *Handler) AdminSetKeyTier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req convert.TierUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.admin.SetKeyTier(r.Context(), id, model.Tier(req.Tier)); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("key tier changed", zap.String("key_id", id.String()), zap.String("tier", req.Tier))
	writeJSON(w, http.StatusOK, convert.Success{Success: true})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a UUID.")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an optional integer parameter; malformed values count as absent.
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
