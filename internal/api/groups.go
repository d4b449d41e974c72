package api

import (
	"encoding/json"
	"net/http"

	"github.com/fleetconfig/channelhub/internal/service"
	"github.com/fleetconfig/channelhub/internal/store"
	"github.com/go-chi/chi/v5"
)

type GroupHandler struct {
	svc   *service.Service
	store store.Store
}

func NewGroupHandler(svc *service.Service, s store.Store) *GroupHandler {
	return &GroupHandler{svc: svc, store: s}
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	p := principal(r.Context(), h.store, r)

	groups, err := h.svc.Groups(r.Context(), p, orgID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	group, err := h.svc.Group(r.Context(), p, orgID, uuid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	p := principal(r.Context(), h.store, r)

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := h.svc.AddGroup(r.Context(), p, orgID, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	result, err := h.svc.RemoveGroup(r.Context(), p, orgID, uuid)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// DeleteByName removes a group addressed by name instead of uuid.
func (h *GroupHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	name := chi.URLParam(r, "name")
	p := principal(r.Context(), h.store, r)

	result, err := h.svc.RemoveGroupByName(r.Context(), p, orgID, name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type groupClustersRequest struct {
	Clusters []string `json:"clusters"`
}

func (h *GroupHandler) GroupClusters(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	var req groupClustersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Clusters) == 0 {
		respondError(w, http.StatusBadRequest, "at least one cluster is required")
		return
	}

	result, err := h.svc.GroupClusters(r.Context(), p, orgID, uuid, req.Clusters)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *GroupHandler) UnGroupClusters(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgID")
	uuid := chi.URLParam(r, "uuid")
	p := principal(r.Context(), h.store, r)

	var req groupClustersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Clusters) == 0 {
		respondError(w, http.StatusBadRequest, "at least one cluster is required")
		return
	}

	result, err := h.svc.UnGroupClusters(r.Context(), p, orgID, uuid, req.Clusters)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
