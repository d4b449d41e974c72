package api

import (
	"encoding/json"
	"net/http"

	"github.com/fleetconfig/channelhub/internal/domain"
	"github.com/fleetconfig/channelhub/internal/engine"
	"github.com/fleetconfig/channelhub/internal/service"
	"github.com/fleetconfig/channelhub/internal/store"
	"github.com/go-chi/chi/v5"
)

type SubscriptionHandler struct {
	svc     *service.Service
	store   store.Store
	limiter *engine.RateLimiter
	// resolve polls per org per second; 0 disables the limit
	resolveRateLimit int
}

func NewSubscriptionHandler(svc *service.Service, s store.Store, limiter *engine.RateLimiter, resolveRateLimit int) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, store: s, limiter: limiter, resolveRateLimit: resolveRateLimit}
}

// ResolveByTag is the agent polling endpoint. It always answers 200 with
// a (possibly empty) URL list: validation failures and store errors are
// indistinguishable from "no subscriptions" by design. Only the rate
// limiter answers differently.
func (h *SubscriptionHandler) ResolveByTag(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")

	if h.limiter != nil && !h.limiter.Allow(r.Context(), orgID, h.resolveRateLimit) {
		respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	orgKey := r.Header.Get(HeaderOrgKey)
	tags := r.URL.Query().Get("tags")

	urls := h.svc.ResolveByTag(r.Context(), orgID, orgKey, tags)
	respondJSON(w, http.StatusOK, urls)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	p := principal(r.Context(), h.store, r)

	subs, err := h.svc.Subscriptions(r.Context(), p, orgID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	sub, err := h.svc.Subscription(r.Context(), p, orgID, uuid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	p := principal(r.Context(), h.store, r)

	var req domain.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ChannelUUID == "" || req.VersionUUID == "" {
		respondError(w, http.StatusBadRequest, "channel_uuid and version_uuid are required")
		return
	}

	result, err := h.svc.AddSubscription(r.Context(), p, orgID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	var req domain.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.EditSubscription(r.Context(), p, orgID, uuid, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	result, err := h.svc.RemoveSubscription(r.Context(), p, orgID, uuid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
