package web

import (
	"net/http"
	"strconv"

	"github.com/contractreg/contractreg/internal/contract"
	"github.com/contractreg/contractreg/internal/logging"
	"github.com/contractreg/contractreg/internal/repository"
	"github.com/go-chi/chi/v5"
)

// handleListContracts returns one page of the filtered, sorted collection.
//
// Query parameters: page, pageSize, sort, dir (asc|desc), businessId, title,
// location, equipmentId, status, plannedFrom, plannedTo, q (free-text).
func (s *Server) handleListContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	query := repository.PageQuery{
		Page:     atoiDefault(q.Get("page"), 1),
		PageSize: atoiDefault(q.Get("pageSize"), repository.DefaultPageSize),
		Filter: repository.Filter{
			BusinessID:  q.Get("businessId"),
			Title:       q.Get("title"),
			Location:    q.Get("location"),
			EquipmentID: q.Get("equipmentId"),
			Status:      contract.Status(q.Get("status")),
			PlannedFrom: q.Get("plannedFrom"),
			PlannedTo:   q.Get("plannedTo"),
			Search:      q.Get("q"),
		},
	}

	if field := q.Get("sort"); field != "" {
		query.Sort = &repository.Sort{
			Field: field,
			Desc:  q.Get("dir") == "desc",
		}
	}

	page, err := s.repo.GetPaginated(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// createContractRequest is the body for manual record creation. All fields
// except businessId and title are optional.
type createContractRequest struct {
	BusinessID   string `json:"businessId"`
	Title        string `json:"title"`
	Location     string `json:"location"`
	RoomArea     string `json:"roomArea"`
	EquipmentID  string `json:"equipmentId"`
	Description  string `json:"description"`
	SerialNumber string `json:"serialNumber"`
	Status       string `json:"status"`
	PlannedStart string `json:"plannedStart"`
	ReportedDate string `json:"reportedDate"`
}

// handleCreateContract validates and inserts one manually entered record.
func (s *Server) handleCreateContract(w http.ResponseWriter, r *http.Request) {
	var req createContractRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	status, _ := contract.NormalizeStatus(req.Status)
	if status == "" {
		status = contract.StatusCreated
	}

	c := contract.Contract{
		BusinessID:   req.BusinessID,
		Title:        contract.OptString(req.Title),
		Location:     contract.OptString(req.Location),
		RoomArea:     contract.OptString(req.RoomArea),
		EquipmentID:  contract.OptString(req.EquipmentID),
		Description:  contract.OptString(req.Description),
		SerialNumber: contract.OptString(req.SerialNumber),
		Status:       status,
		PlannedStart: contract.OptString(req.PlannedStart),
		ReportedDate: contract.OptString(req.ReportedDate),
		IsComplete:   status == contract.StatusCompleted,
	}

	created, err := s.repo.Add(r.Context(), c)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("contract created",
		"id", created.ID,
		"businessId", created.BusinessID,
	)
	writeJSON(w, http.StatusCreated, created)
}

// handleGetContract returns one record by ID.
func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, ok := s.repo.Get(id)
	if !ok {
		respondError(w, r, &repository.NotFoundError{ID: id})
		return
	}

	writeJSON(w, http.StatusOK, c)
}

// handleUpdateContract merges a partial patch into one record.
func (s *Server) handleUpdateContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch repository.Patch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := s.repo.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// bulkUpdateRequest applies one patch to a list of record IDs.
type bulkUpdateRequest struct {
	IDs   []string         `json:"ids"`
	Patch repository.Patch `json:"patch"`
}

// handleBulkUpdate applies the same patch to many records, best-effort.
func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var req bulkUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids must not be empty")
		return
	}

	result, err := s.repo.BulkUpdate(r.Context(), req.IDs, req.Patch)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("bulk update applied",
		"requested", len(req.IDs),
		"updated", len(result.Updated),
		"failed", len(result.Failed),
	)
	writeJSON(w, http.StatusOK, result)
}

// handleDeleteContract removes one record.
func (s *Server) handleDeleteContract(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.repo.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("contract deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleStatistics returns collection totals and grouped counts.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.repo.GetStatistics())
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
