package catalog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/rbac-admin/internal/transport"
)

type ServiceAPI interface {
	ListMenus(ctx context.Context) ([]Menu, error)
	ListModules(ctx context.Context) ([]Module, error)
	ListModulesForMenu(ctx context.Context, menuID int64) ([]Module, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetMenus handles GET /menus
func (h *Handler) GetMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := h.Service.ListMenus(r.Context())
	if err != nil {
		h.Logger.Error("GetMenus: failed to list menus", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MenusResponse{Menus: menus})
}

// GetModules handles GET /modules
func (h *Handler) GetModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.Service.ListModules(r.Context())
	if err != nil {
		h.Logger.Error("GetModules: failed to list modules", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ModulesResponse{Modules: modules})
}

// GetMenuModules handles GET /menus/{menuId}/modules
func (h *Handler) GetMenuModules(w http.ResponseWriter, r *http.Request) {
	menuID, err := transport.IDParam(r, "menuId")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	modules, err := h.Service.ListModulesForMenu(r.Context(), menuID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ModulesResponse{Modules: modules})
}
