package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"pawcare/internal/booking"
	"pawcare/internal/logging"
	"pawcare/internal/service"
	"pawcare/internal/validation"

	"github.com/go-chi/chi/v5"
)

type startRequest struct {
	ServiceID  string `json:"service_id" validate:"required,max=64"`
	CustomerID string `json:"customer_id" validate:"required,max=64"`
}

type petRequest struct {
	PetID *string `json:"pet_id" validate:"required"`
}

type employeeRequest struct {
	EmployeeID *string `json:"employee_id" validate:"required"`
}

type dateRequest struct {
	ScheduledDate string `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
}

type timeRequest struct {
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
}

type notesRequest struct {
	CustomerNotes string `json:"customer_notes" validate:"max=1000"`
}

func (s *HTTPServer) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !s.decode(w, r, &req) {
		return
	}

	view, err := s.drafts.Start(r.Context(), req.CustomerID, req.ServiceID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *HTTPServer) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.drafts.View(r.Context(), sessionID(r))
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleSelectPet(w http.ResponseWriter, r *http.Request) {
	var req petRequest
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.drafts.SelectPet(r.Context(), sessionID(r), *req.PetID)
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleSelectEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.drafts.SelectEmployee(r.Context(), sessionID(r), *req.EmployeeID)
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleSelectDate(w http.ResponseWriter, r *http.Request) {
	var req dateRequest
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.drafts.SelectScheduledDate(r.Context(), sessionID(r), req.ScheduledDate)
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleSelectTime(w http.ResponseWriter, r *http.Request) {
	var req timeRequest
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.drafts.SelectStartTime(r.Context(), sessionID(r), req.StartTime)
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if !s.decode(w, r, &req) {
		return
	}
	view, err := s.drafts.UpdateCustomerNotes(r.Context(), sessionID(r), req.CustomerNotes)
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleNext(w http.ResponseWriter, r *http.Request) {
	advanced, view, err := s.drafts.Next(r.Context(), sessionID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"advanced": advanced, "view": view})
}

func (s *HTTPServer) handleBack(w http.ResponseWriter, r *http.Request) {
	moved, view, err := s.drafts.Back(r.Context(), sessionID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": moved, "view": view})
}

func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := s.drafts.Submit(r.Context(), sessionID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request) {
	view, err := s.drafts.Reset(r.Context(), sessionID(r))
	s.respondView(w, r, view, err)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.drafts.Cancel(r.Context(), sessionID(r)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "session")
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if fields := validation.Validate(dst); fields != nil {
		writeValidationError(w, fields)
		return false
	}
	return true
}

func (s *HTTPServer) respondView(w http.ResponseWriter, r *http.Request, view *service.View, err error) {
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *validation.Error
		subErr *booking.SubmissionError
	)

	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, booking.ErrIncompleteDraft):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &verr):
		writeValidationError(w, verr.Fields)
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrDateTooFar):
		writeValidationError(w, map[string]string{"scheduled_date": err.Error()})
	case errors.Is(err, service.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &subErr):
		writeError(w, http.StatusBadGateway, subErr.Message)
	default:
		logging.FromContext(r.Context(), s.logger).Error().Err(err).
			Str("session_id", sessionID(r)).
			Msg("booking request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
