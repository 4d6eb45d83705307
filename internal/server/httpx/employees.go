package httpx

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/emphub/internal/common"
	"github.com/dmitrijs2005/emphub/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type employeeResponse struct {
	Message  string           `json:"message"`
	Employee *models.Employee `json:"employee"`
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	s.listEmployees(w, r, models.EmployeeFilter{})
}

func (s *Server) handleSearchEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.listEmployees(w, r, models.EmployeeFilter{
		Department: q.Get("department"),
		Position:   q.Get("position"),
	})
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request, filter models.EmployeeFilter) {
	list, err := s.employees.List(r.Context(), filter)
	if err != nil {
		s.writeInternalError(w, r, "listing employees failed", err)
		return
	}
	if list == nil {
		list = []*models.Employee{}
	}
	writeJSON(w, http.StatusOK, list)
}

// readEmployeeFields reads the body fields and lets a stored upload override
// any profile_image value. It answers the request itself when it returns false.
func (s *Server) readEmployeeFields(w http.ResponseWriter, r *http.Request) (models.EmployeeFields, bool) {
	values, err := employeeValues(r)
	if err != nil {
		if errors.Is(err, errBadField) {
			writeMessage(w, http.StatusBadRequest, "Invalid employee fields")
			return models.EmployeeFields{}, false
		}
		writeBodyError(w, err)
		return models.EmployeeFields{}, false
	}

	if p, ok := uploadedPath(r.Context()); ok {
		values["profile_image"] = p
	}

	fields, err := toEmployeeFields(values)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid employee fields")
		return models.EmployeeFields{}, false
	}
	return fields, true
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.readEmployeeFields(w, r)
	if !ok {
		return
	}

	e, err := s.employees.Create(r.Context(), fields)
	if err != nil {
		s.writeInternalError(w, r, "creating employee failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, employeeResponse{Message: "Employee created successfully.", Employee: e})
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.employees.Get(r.Context(), chi.URLParam(r, "eid"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "Employee not found")
			return
		}
		s.writeInternalError(w, r, "fetching employee failed", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	fields, ok := s.readEmployeeFields(w, r)
	if !ok {
		return
	}

	e, err := s.employees.Update(r.Context(), chi.URLParam(r, "eid"), fields)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "Employee not found")
			return
		}
		s.writeInternalError(w, r, "updating employee failed", err)
		return
	}

	writeJSON(w, http.StatusOK, employeeResponse{Message: "Employee updated successfully.", Employee: e})
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	err := s.employees.Delete(r.Context(), r.URL.Query().Get("eid"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "Employee not found")
			return
		}
		s.writeInternalError(w, r, "deleting employee failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
