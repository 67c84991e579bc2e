package httpapi

import (
	"errors"
	"net/http"

	"sucursalpos/internal/domain"
)

func (a *API) handleBranches(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		branches, err := a.service.ListBranches(r.Context(), sess)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
	case http.MethodPost:
		var req domain.BranchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		branch, err := a.service.CreateBranch(r.Context(), sess, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"branch": branch})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBranchActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/branches/")
	if id == "" || action != "" {
		writeError(w, http.StatusBadRequest, errors.New("branch id required"))
		return
	}
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodPatch:
		var req domain.BranchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		branch, err := a.service.UpdateBranch(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"branch": branch})
	case http.MethodDelete:
		if err := a.service.DeleteBranch(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategories(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		categories, err := a.service.ListCategories(r.Context(), sess)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	case http.MethodPost:
		var req domain.NameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		category, err := a.service.CreateCategory(r.Context(), sess, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"category": category})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCategoryActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/categories/")
	if id == "" || action != "" {
		writeError(w, http.StatusBadRequest, errors.New("category id required"))
		return
	}
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodPatch:
		var req domain.NameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		category, err := a.service.UpdateCategory(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"category": category})
	case http.MethodDelete:
		if err := a.service.DeleteCategory(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSubcategories(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		subcategories, err := a.service.ListSubcategories(r.Context(), sess, r.URL.Query().Get("category_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"subcategories": subcategories})
	case http.MethodPost:
		var req domain.SubcategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sub, err := a.service.CreateSubcategory(r.Context(), sess, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"subcategory": sub})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSubcategoryActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/subcategories/")
	if id == "" || action != "" {
		writeError(w, http.StatusBadRequest, errors.New("subcategory id required"))
		return
	}
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodPatch:
		var req domain.SubcategoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sub, err := a.service.UpdateSubcategory(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"subcategory": sub})
	case http.MethodDelete:
		if err := a.service.DeleteSubcategory(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBrands(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		brands, err := a.service.ListBrands(r.Context(), sess)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"brands": brands})
	case http.MethodPost:
		var req domain.NameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		brand, err := a.service.CreateBrand(r.Context(), sess, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"brand": brand})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBrandActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/brands/")
	if id == "" || action != "" {
		writeError(w, http.StatusBadRequest, errors.New("brand id required"))
		return
	}
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodPatch:
		var req domain.NameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		brand, err := a.service.UpdateBrand(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"brand": brand})
	case http.MethodDelete:
		if err := a.service.DeleteBrand(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleMasterProducts(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		products, err := a.service.ListMasterProducts(r.Context(), sess)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"master_products": products})
	case http.MethodPost:
		var req domain.MasterProductRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.CreateMasterProduct(r.Context(), sess, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"master_product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleMasterProductActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/master-products/")
	if id == "" || action != "" {
		writeError(w, http.StatusBadRequest, errors.New("master product id required"))
		return
	}
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodPatch:
		var req domain.MasterProductRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.UpdateMasterProduct(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"master_product": product})
	case http.MethodDelete:
		if err := a.service.DeleteMasterProduct(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

// handleInventory lists stock for both roles; employees only ever see their
// own branch. Creating stock is admin only.
func (a *API) handleInventory(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		items, err := a.service.ListInventory(r.Context(), sess, r.URL.Query().Get("branch_id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"inventory": items})
	case http.MethodPost:
		var req domain.InventoryCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, err := a.service.CreateInventoryItem(r.Context(), sess, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"item": item})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleInventoryActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/inventory/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("inventory item id required"))
		return
	}
	sess := sessionFrom(r)

	if action == "restock" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req domain.RestockRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, err := a.service.Restock(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, errors.New("unknown inventory action"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var req domain.InventoryUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		item, err := a.service.UpdateInventoryItem(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
	case http.MethodDelete:
		if err := a.service.DeleteInventoryItem(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		employees, err := a.service.ListEmployees(r.Context(), sess)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": employees})
	case http.MethodPost:
		var req domain.EmployeeCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		user, err := a.auth.CreateEmployee(r.Context(), a.service, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": user})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleUserActions(w http.ResponseWriter, r *http.Request) {
	id, action := pathID(r.URL.Path, "/api/v1/users/")
	if id == "" || action != "" {
		writeError(w, http.StatusBadRequest, errors.New("user id required"))
		return
	}
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodPatch:
		var req domain.UserUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		user, err := a.service.UpdateEmployee(r.Context(), sess, id, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	case http.MethodDelete:
		if err := a.service.DeleteEmployee(r.Context(), sess, id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}
