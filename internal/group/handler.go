package group

import (
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// GetGroups handles GET /groups
func (h *Handler) GetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, GroupsResponse{Groups: groups})
}

// CreateGroup handles POST /groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var dto CreateGroupDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, g)
}

// GetGroup handles GET /groups/{id}
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	g, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, g)
}

// RenameGroup handles PUT /groups/{id}
func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto RenameGroupDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	g, err := h.Service.Rename(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, g)
}

// DeleteGroup handles DELETE /groups/{id}
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGroupMenus handles GET /groups/{id}/menus
func (h *Handler) GetGroupMenus(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	menus, err := h.Service.ListMenus(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MenusResponse{GroupID: id, Menus: menus})
}

// ReplaceGroupMenus handles PUT /groups/{id}/menus
func (h *Handler) ReplaceGroupMenus(w http.ResponseWriter, r *http.Request) {
	id, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto ReplaceMenusDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	menus, err := h.Service.ReplaceMenus(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MenusResponse{GroupID: id, Menus: menus})
}
