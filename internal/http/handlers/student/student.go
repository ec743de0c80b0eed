// Package student serves the student HTTP API.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-students-cache/cache"
	"github.com/goliatone/go-students-cache/internal/utils/response"
	"github.com/goliatone/go-students-cache/students"
)

// Service is the student service the handlers call.
type Service interface {
	GetByID(ctx context.Context, id int64) (students.StudentDTO, error)
	Add(ctx context.Context, dto students.StudentDTO) (students.StudentDTO, error)
	Update(ctx context.Context, dto students.StudentDTO) (students.StudentDTO, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	Stats() map[string]int64
}

var validate = validator.New()

// Register mounts the student routes on mux.
func Register(mux *http.ServeMux, svc Service, logger *slog.Logger) {
	mux.HandleFunc("GET /api/students/{id}", GetByID(svc, logger))
	mux.HandleFunc("POST /api/students", New(svc, logger))
	mux.HandleFunc("PUT /api/students", Update(svc, logger))
	mux.HandleFunc("DELETE /api/students/{id}", Delete(svc, logger))
	mux.HandleFunc("GET /api/cache/stats", Stats(svc))
}

// GetByID returns one student.
func GetByID(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		dto, err := svc.GetByID(requestContext(r), id)
		if err != nil {
			writeError(w, r, logger, fmt.Sprintf("get student %d", id), err)
			return
		}
		response.WriteJSON(w, http.StatusOK, dto)
	}
}

// New stores a student, or returns the existing one with the same natural key.
func New(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		created, err := svc.Add(requestContext(r), dto)
		if err != nil {
			writeError(w, r, logger, "add student", err)
			return
		}
		logger.InfoContext(r.Context(), "student stored", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusOK, created)
	}
}

// Update replaces the student identified by the body id.
func Update(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, ok := decodeStudent(w, r)
		if !ok {
			return
		}
		if dto.ID < 1 {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(fmt.Errorf("student id: %d must be positive", dto.ID)))
			return
		}

		updated, err := svc.Update(requestContext(r), dto)
		if err != nil {
			writeError(w, r, logger, fmt.Sprintf("update student %d", dto.ID), err)
			return
		}
		logger.InfoContext(r.Context(), "student updated", slog.Int64("id", updated.ID))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete removes one student and answers true, or 404 when it does not exist.
func Delete(svc Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		deleted, err := svc.DeleteByID(requestContext(r), id)
		if err != nil {
			writeError(w, r, logger, fmt.Sprintf("delete student %d", id), err)
			return
		}
		if !deleted {
			writeError(w, r, logger, fmt.Sprintf("delete student %d", id), students.ErrNotFound)
			return
		}
		logger.InfoContext(r.Context(), "student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, true)
	}
}

// Stats reports the cache counters.
func Stats(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, svc.Stats())
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("invalid id: must be an integer")))
		return 0, false
	}
	if id < 1 {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(fmt.Errorf("student id: %d must be positive", id)))
		return 0, false
	}
	return id, true
}

func decodeStudent(w http.ResponseWriter, r *http.Request) (students.StudentDTO, bool) {
	var dto students.StudentDTO
	err := json.NewDecoder(r.Body).Decode(&dto)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return dto, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return dto, false
	}

	if err := validate.Struct(dto); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
			return dto, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return dto, false
	}
	return dto, true
}

// requestContext honours Cache-Control: no-cache by bypassing cache reads.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	for _, directive := range strings.Split(r.Header.Get("Cache-Control"), ",") {
		if strings.EqualFold(strings.TrimSpace(directive), "no-cache") {
			return cache.WithBypass(ctx)
		}
	}
	return ctx
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, students.ErrInvalid):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
	case errors.Is(err, students.ErrNotFound):
		logger.InfoContext(r.Context(), "not found", slog.String("op", op))
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("student not found")))
	case errors.Is(err, students.ErrConflict):
		response.WriteJSON(w, http.StatusConflict, response.GeneralError(err))
	default:
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError,
			response.GeneralError(fmt.Errorf("cannot %s", op)))
	}
}
