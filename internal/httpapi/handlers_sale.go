package httpapi

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"sucursalpos/internal/domain"
	"sucursalpos/internal/service"
)

// handleRegister shows the caller's register; DELETE empties it.
func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	switch r.Method {
	case http.MethodGet:
		view, err := a.service.Register(r.Context(), sess)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"register": view})
	case http.MethodDelete:
		if err := a.service.ClearRegister(r.Context(), sess); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleRegisterSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := a.service.SearchInventory(r.Context(), sessionFrom(r), req.Query)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"register": view})
}

func (a *API) handleRegisterItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.AddItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := a.service.AddToCart(r.Context(), sessionFrom(r), req.ItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"register": view})
}

func (a *API) handleRegisterManualItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.ManualItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := a.service.AddManualItem(r.Context(), sessionFrom(r), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"register": view})
}

// handleCheckout finalizes the register. A sale that was written but whose
// stock decrements did not all apply is reported with its id so the client
// does not charge it twice.
func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	resp, err := a.service.Checkout(r.Context(), sessionFrom(r))
	if err != nil {
		var partial *service.PartialSaleError
		if errors.As(err, &partial) {
			log.Printf("[httpapi] ERROR: %v", partial)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":   "sale recorded but stock was not fully updated",
				"sale_id": partial.SaleID,
			})
			return
		}
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if resp.Recorded {
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

func (a *API) handleTodaySummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	branchID := r.URL.Query().Get("branch_id")
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	summary, err := a.service.TodaySummary(r.Context(), sessionFrom(r), branchID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	switch format {
	case "csv":
		body, err := summaryToCSV(summary)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"sales-%s-%s.csv\"", summary.BranchID, summary.Date))
		_, _ = w.Write(body)
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(summaryToPrintableHTML(summary)))
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	dashboard, err := a.service.SalesDashboard(r.Context(), sessionFrom(r), q.Get("from"), q.Get("to"), q.Get("branch_id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (a *API) handlePerformance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	ranking, err := a.service.PerformanceRanking(r.Context(), sessionFrom(r), q.Get("from"), q.Get("to"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}
