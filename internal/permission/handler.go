package permission

import (
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal"
	"github.com/frahmantamala/rbac-admin/internal/auth"
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

// GetGroupPermissions handles GET /groups/{id}/permissions
func (h *Handler) GetGroupPermissions(w http.ResponseWriter, r *http.Request) {
	groupID, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	grants, err := h.Service.ListGrants(r.Context(), groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, GrantsResponse{GroupID: groupID, Permissions: grants})
}

// UpdateGroupPermissions handles PUT /groups/{id}/permissions
func (h *Handler) UpdateGroupPermissions(w http.ResponseWriter, r *http.Request) {
	groupID, err := transport.IDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	var dto SavePermissionsDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	grants, err := h.Service.SavePermissions(r.Context(), groupID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, GrantsResponse{GroupID: groupID, Permissions: grants})
}

// GetNavigation handles GET /me/navigation
func (h *Handler) GetNavigation(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	access, err := h.Service.Navigation(r.Context(), p)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NavigationResponse{
		IsSuperuser: access.IsSuperuser(),
		Menus:       access.Navigation(),
	})
}

// OpenModule handles GET /modules/{moduleId}/open
func (h *Handler) OpenModule(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrMissingToken)
		return
	}

	moduleID, err := transport.IDParam(r, "moduleId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp, err := h.Service.OpenModule(r.Context(), p, moduleID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
