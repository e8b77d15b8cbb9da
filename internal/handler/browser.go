package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abdoir/affinity-server/internal/domain"
	"github.com/abdoir/affinity-server/internal/service"
)

// BrowserHandler serves the admin database browser. Unlike the rest of the
// API it reports raw driver errors, since its audience is an admin
// debugging the store through a secret-key-guarded endpoint.
type BrowserHandler struct {
	browser *service.BrowserService
}

func NewBrowserHandler(browser *service.BrowserService) *BrowserHandler {
	return &BrowserHandler{browser: browser}
}

func writeBrowserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// HandleTables lists the browsable tables.
func (h *BrowserHandler) HandleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.browser.Tables(r.Context())
	if err != nil {
		writeBrowserError(w, err)
		return
	}

	named := make([]map[string]string, len(tables))
	for i, t := range tables {
		named[i] = map[string]string{"name": t}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": named})
}

// HandleSchema describes the columns of one table.
func (h *BrowserHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	columns, err := h.browser.Schema(r.Context(), r.PathValue("table"))
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": columns})
}

// HandleRows returns a page of rows from one table.
func (h *BrowserHandler) HandleRows(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	rows, total, err := h.browser.ListRows(r.Context(), r.PathValue("table"), limit, offset)
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows, "total": total})
}

type queryRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params"`
}

// HandleQuery runs a read-only SELECT with optional bound parameters.
func (h *BrowserHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.browser.Query(r.Context(), req.Query, req.Params)
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

type rowDataRequest struct {
	Data map[string]any `json:"data"`
}

// HandleInsertRow inserts one row built from a column map.
func (h *BrowserHandler) HandleInsertRow(w http.ResponseWriter, r *http.Request) {
	var req rowDataRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.browser.InsertRow(r.Context(), r.PathValue("table"), req.Data)
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id, "changes": 1})
}

// HandleUpdateRow updates one row by id.
func (h *BrowserHandler) HandleUpdateRow(w http.ResponseWriter, r *http.Request) {
	var req rowDataRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	changes, err := h.browser.UpdateRow(r.Context(), r.PathValue("table"), r.PathValue("id"), req.Data)
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "changes": changes})
}

// HandleDeleteRow deletes one row by id.
func (h *BrowserHandler) HandleDeleteRow(w http.ResponseWriter, r *http.Request) {
	changes, err := h.browser.DeleteRow(r.Context(), r.PathValue("table"), r.PathValue("id"))
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "changes": changes})
}

type executeRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// HandleExecute runs arbitrary SQL when unsafe operations are enabled.
func (h *BrowserHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.browser.Execute(r.Context(), req.SQL, req.Params)
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleClearAll empties every table when unsafe operations are enabled.
func (h *BrowserHandler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	details, total, err := h.browser.ClearAll(r.Context())
	if err != nil {
		writeBrowserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "All tables cleared",
		"total_deleted": total,
		"details":       details,
	})
}
