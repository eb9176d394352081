package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Siddarth2230/flowcode/internal/models"
	"github.com/Siddarth2230/flowcode/internal/service"
	"github.com/Siddarth2230/flowcode/pkg/flowindex"
	"github.com/Siddarth2230/flowcode/pkg/idgen"
)

type CodeHandler struct {
	service *service.CodeService
}

func NewCodeHandler(svc *service.CodeService) *CodeHandler {
	return &CodeHandler{service: svc}
}

// Register mounts the API routes on r.
func (h *CodeHandler) Register(r *mux.Router) {
	r.HandleFunc("/sequences/{name}", h.SequenceStatus).Methods(http.MethodGet)
	r.HandleFunc("/sequences/{name}/codes", h.IssueCode).Methods(http.MethodPost)
	r.HandleFunc("/sequences/{name}/codes", h.ListCodes).Methods(http.MethodGet)
	r.HandleFunc("/sequences/{name}/codes/{code}", h.GetCode).Methods(http.MethodGet)
	r.HandleFunc("/encode", h.Encode).Methods(http.MethodGet)
	r.HandleFunc("/capacity", h.Capacity).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// GET /sequences/{name}?length=
func (h *CodeHandler) SequenceStatus(w http.ResponseWriter, r *http.Request) {
	length := 0
	if v := r.URL.Query().Get("length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "length must be an integer")
			return
		}
		length = n
	}

	st, err := h.service.Status(r.Context(), mux.Vars(r)["name"], length)
	if err != nil {
		h.fail(w, "SequenceStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// POST /sequences/{name}/codes
func (h *CodeHandler) IssueCode(w http.ResponseWriter, r *http.Request) {
	var req models.IssueRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	c, err := h.service.Issue(r.Context(), mux.Vars(r)["name"], req)
	if err != nil {
		h.fail(w, "IssueCode", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GET /sequences/{name}/codes?limit=
func (h *CodeHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	codes, err := h.service.Recent(r.Context(), mux.Vars(r)["name"], limit)
	if err != nil {
		h.fail(w, "ListCodes", err)
		return
	}
	if codes == nil {
		codes = []models.IssuedCode{}
	}
	writeJSON(w, http.StatusOK, codes)
}

// GET /sequences/{name}/codes/{code}
func (h *CodeHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	c, err := h.service.Lookup(r.Context(), vars["name"], vars["code"])
	if err != nil {
		h.fail(w, "GetCode", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// GET /encode?value=&length=
func (h *CodeHandler) Encode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, err := strconv.ParseUint(q.Get("value"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "value must be a non-negative integer")
		return
	}
	length, err := strconv.Atoi(q.Get("length"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "length must be an integer")
		return
	}

	resp, err := h.service.Preview(value, length)
	if err != nil {
		h.fail(w, "Encode", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /capacity?length=
func (h *CodeHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	length, err := strconv.Atoi(r.URL.Query().Get("length"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "length must be an integer")
		return
	}

	resp, err := h.service.Capacity(length)
	if err != nil {
		h.fail(w, "Capacity", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail maps service errors to HTTP responses.
func (h *CodeHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSequence), errors.Is(err, flowindex.ErrLength),
		errors.Is(err, service.ErrLengthBounds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, idgen.ErrSequenceExhausted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, flowindex.ErrRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "op", op, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// helper: write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// can't write response now
		slog.Error("writeJSON encode error", "err", err)
	}
}

// helper: write an error message in JSON form { "error": "msg" }
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
