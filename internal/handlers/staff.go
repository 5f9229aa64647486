package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	applog "provender/internal/log"
	"provender/models"
)

type departmentRequest struct {
	Name string `json:"name"`
}

type departmentResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type staffMemberRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Position     string `json:"position"`
	DepartmentID *uint  `json:"department_id"`
}

type staffMemberResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Position       string `json:"position,omitempty"`
	DepartmentID   *uint  `json:"department_id,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
}

type assignmentRequest struct {
	StaffID uint   `json:"staff_id"`
	Date    string `json:"date"`
	Shift   string `json:"shift"`
	Task    string `json:"task"`
}

type assignmentResponse struct {
	ID        uint      `json:"id"`
	StaffID   uint      `json:"staff_id"`
	StaffName string    `json:"staff_name,omitempty"`
	Date      time.Time `json:"date"`
	Shift     string    `json:"shift,omitempty"`
	Task      string    `json:"task,omitempty"`
}

// DepartmentResource handles /app/api/departments.
func DepartmentResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/departments")
	path = strings.Trim(path, "/")
	ctx := r.Context()

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			var results []models.Department
			if err := database.WithContext(ctx).Order("name asc").Find(&results).Error; err != nil {
				applog.Error(ctx, "failed to list departments", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "unable to load departments")
				return
			}
			responses := make([]departmentResponse, 0, len(results))
			for _, department := range results {
				responses = append(responses, departmentResponse{ID: department.ID, Name: department.Name})
			}
			writeJSON(w, http.StatusOK, responses)
		case http.MethodPost:
			var payload departmentRequest
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid request payload")
				return
			}
			name := strings.TrimSpace(payload.Name)
			if name == "" {
				writeJSONError(w, http.StatusBadRequest, "name is required")
				return
			}
			department := models.Department{Name: name}
			if err := database.WithContext(ctx).Create(&department).Error; err != nil {
				applog.Error(ctx, "failed to create department", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "unable to create department")
				return
			}
			writeJSON(w, http.StatusCreated, departmentResponse{ID: department.ID, Name: department.Name})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		result := database.WithContext(ctx).Delete(&models.Department{}, uint(idValue))
		if result.Error != nil {
			applog.Error(ctx, "failed to delete department", "error", result.Error, "id", idValue)
			writeJSONError(w, http.StatusInternalServerError, "unable to delete department")
			return
		}
		if result.RowsAffected == 0 {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// StaffResource handles /app/api/staff.
func StaffResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/staff")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listStaff(w, r)
		case http.MethodPost:
			createStaffMember(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		showStaffMember(w, r, uint(idValue))
	case http.MethodPut:
		updateStaffMember(w, r, uint(idValue))
	case http.MethodDelete:
		deleteStaffMember(w, r, uint(idValue))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Preload("Department").Order("name asc")
	if departmentParam := strings.TrimSpace(r.URL.Query().Get("department_id")); departmentParam != "" {
		if idValue, err := strconv.ParseUint(departmentParam, 10, 64); err == nil {
			query = query.Where("department_id = ?", uint(idValue))
		}
	}

	var results []models.StaffMember
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list staff", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load staff")
		return
	}

	responses := make([]staffMemberResponse, 0, len(results))
	for _, member := range results {
		responses = append(responses, projectStaffMember(member))
	}
	writeJSON(w, http.StatusOK, responses)
}

func showStaffMember(w http.ResponseWriter, r *http.Request, staffID uint) {
	ctx := r.Context()
	var member models.StaffMember
	if err := database.WithContext(ctx).Preload("Department").First(&member, staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load staff member", "error", err, "id", staffID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load staff member")
		return
	}
	writeJSON(w, http.StatusOK, projectStaffMember(member))
}

func createStaffMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload staffMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	member := models.StaffMember{
		Name:         strings.TrimSpace(payload.Name),
		Email:        strings.TrimSpace(payload.Email),
		Phone:        strings.TrimSpace(payload.Phone),
		Position:     strings.TrimSpace(payload.Position),
		DepartmentID: payload.DepartmentID,
	}
	if err := database.WithContext(ctx).Create(&member).Error; err != nil {
		applog.Error(ctx, "failed to create staff member", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create staff member")
		return
	}
	writeJSON(w, http.StatusCreated, projectStaffMember(member))
}

func updateStaffMember(w http.ResponseWriter, r *http.Request, staffID uint) {
	ctx := r.Context()
	var member models.StaffMember
	if err := database.WithContext(ctx).First(&member, staffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load staff member", "error", err, "id", staffID)
		writeJSONError(w, http.StatusInternalServerError, "unable to load staff member")
		return
	}

	var payload staffMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	member.Name = strings.TrimSpace(payload.Name)
	member.Email = strings.TrimSpace(payload.Email)
	member.Phone = strings.TrimSpace(payload.Phone)
	member.Position = strings.TrimSpace(payload.Position)
	member.DepartmentID = payload.DepartmentID

	if err := database.WithContext(ctx).Save(&member).Error; err != nil {
		applog.Error(ctx, "failed to update staff member", "error", err, "id", staffID)
		writeJSONError(w, http.StatusInternalServerError, "unable to update staff member")
		return
	}
	writeJSON(w, http.StatusOK, projectStaffMember(member))
}

func deleteStaffMember(w http.ResponseWriter, r *http.Request, staffID uint) {
	ctx := r.Context()
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", staffID).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.StaffMember{}, staffID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to delete staff member", "error", err, "id", staffID)
		writeJSONError(w, http.StatusInternalServerError, "unable to delete staff member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignmentResource handles the roster under /app/api/assignments.
func AssignmentResource(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	if _, ok := currentUserID(r); !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/app/api/assignments")
	path = strings.Trim(path, "/")
	ctx := r.Context()

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			listAssignments(w, r)
		case http.MethodPost:
			createAssignment(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	idValue, err := strconv.ParseUint(path, 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		result := database.WithContext(ctx).Delete(&models.Assignment{}, uint(idValue))
		if result.Error != nil {
			applog.Error(ctx, "failed to delete assignment", "error", result.Error, "id", idValue)
			writeJSONError(w, http.StatusInternalServerError, "unable to delete assignment")
			return
		}
		if result.RowsAffected == 0 {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func listAssignments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := database.WithContext(ctx).Preload("Staff").Order("date asc, id asc")

	if staffParam := strings.TrimSpace(r.URL.Query().Get("staff_id")); staffParam != "" {
		if idValue, err := strconv.ParseUint(staffParam, 10, 64); err == nil {
			query = query.Where("staff_id = ?", uint(idValue))
		}
	}
	if dateParam := strings.TrimSpace(r.URL.Query().Get("date")); dateParam != "" {
		if day, err := time.Parse("2006-01-02", dateParam); err == nil {
			query = query.Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1))
		}
	}

	var results []models.Assignment
	if err := query.Find(&results).Error; err != nil {
		applog.Error(ctx, "failed to list assignments", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to load assignments")
		return
	}

	responses := make([]assignmentResponse, 0, len(results))
	for _, assignment := range results {
		responses = append(responses, projectAssignment(assignment))
	}
	writeJSON(w, http.StatusOK, responses)
}

func createAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.StaffID == 0 {
		writeJSONError(w, http.StatusBadRequest, "staff_id is required")
		return
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(payload.Date))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "date must use the 2006-01-02 format")
		return
	}

	var member models.StaffMember
	if err := database.WithContext(ctx).First(&member, payload.StaffID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSONError(w, http.StatusBadRequest, "staff member does not exist")
			return
		}
		applog.Error(ctx, "failed to verify staff member", "error", err, "staffID", payload.StaffID)
		writeJSONError(w, http.StatusInternalServerError, "unable to create assignment")
		return
	}

	assignment := models.Assignment{
		StaffID: payload.StaffID,
		Date:    day.UTC(),
		Shift:   strings.TrimSpace(payload.Shift),
		Task:    strings.TrimSpace(payload.Task),
	}
	if err := database.WithContext(ctx).Create(&assignment).Error; err != nil {
		applog.Error(ctx, "failed to create assignment", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to create assignment")
		return
	}
	assignment.Staff = &member
	writeJSON(w, http.StatusCreated, projectAssignment(assignment))
}

func projectStaffMember(member models.StaffMember) staffMemberResponse {
	response := staffMemberResponse{
		ID:           member.ID,
		Name:         member.Name,
		Email:        member.Email,
		Phone:        member.Phone,
		Position:     member.Position,
		DepartmentID: member.DepartmentID,
	}
	if member.Department != nil {
		response.DepartmentName = member.Department.Name
	}
	return response
}

func projectAssignment(assignment models.Assignment) assignmentResponse {
	response := assignmentResponse{
		ID:      assignment.ID,
		StaffID: assignment.StaffID,
		Date:    assignment.Date,
		Shift:   assignment.Shift,
		Task:    assignment.Task,
	}
	if assignment.Staff != nil {
		response.StaffName = assignment.Staff.Name
	}
	return response
}
