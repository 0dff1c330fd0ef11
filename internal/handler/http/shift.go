package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/shift-engine-go/internal/domain/shift"
	"github.com/cmlabs-hris/shift-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/shift-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/shift-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ShiftHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	CreateBatch(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	scheduleService shift.ScheduleService
}

func NewShiftHandler(scheduleService shift.ScheduleService) ShiftHandler {
	return &shiftHandlerImpl{
		scheduleService: scheduleService,
	}
}

// Create implements ShiftHandler.
func (h *shiftHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req shift.CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.CreatedBy = &principal.UserID

	result, err := h.scheduleService.ScheduleSingleShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Shift scheduled successfully", result)
}

// CreateBatch implements ShiftHandler.
func (h *shiftHandlerImpl) CreateBatch(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	var req shift.BatchScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.CreatedBy = &principal.UserID

	result, err := h.scheduleService.ScheduleBatch(r.Context(), req)
	if err != nil {
		if result.Empty() {
			response.HandleError(w, err)
			return
		}
		// shifts written before the failure stay committed
		response.HandlePartialError(w, err, result)
		return
	}

	response.SuccessWithMessage(w, "Batch scheduling finished", result)
}

// List implements ShiftHandler.
func (h *shiftHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	query := r.URL.Query()
	req := shift.ListShiftsRequest{
		EmployeeID: query.Get("employee_id"),
		LocationID: query.Get("location_id"),
		StartDate:  query.Get("start_date"),
		EndDate:    query.Get("end_date"),
	}

	// employees only ever see their own shifts
	if !user.HasPermission(principal.Role, user.PermissionShiftViewAll) {
		if principal.EmployeeID == "" {
			response.HandleError(w, user.ErrEmployeeProfileRequired)
			return
		}
		if req.EmployeeID != "" && req.EmployeeID != principal.EmployeeID {
			response.HandleError(w, user.ErrInsufficientPermissions)
			return
		}
		req.EmployeeID = principal.EmployeeID
	}

	result, err := h.scheduleService.ListShifts(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessList(w, result)
}

// Get implements ShiftHandler.
func (h *shiftHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing principal")
		return
	}

	id := chi.URLParam(r, "id")

	result, err := h.scheduleService.GetShift(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !principal.CanViewEmployee(result.EmployeeID) {
		response.HandleError(w, shift.ErrShiftNotFound)
		return
	}

	response.Success(w, result)
}

// Update implements ShiftHandler.
func (h *shiftHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req shift.UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.scheduleService.UpdateShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift updated successfully", result)
}

// Cancel implements ShiftHandler.
func (h *shiftHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.scheduleService.CancelShift(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Shift cancelled successfully", nil)
}
