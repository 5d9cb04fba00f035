// Package server exposes the registry's operations as a JSON API. It holds
// no business rules: every route delegates to the service layer and maps
// the error taxonomy to HTTP statuses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	commonerrors "github.com/judzis-sketch/gedimu-registras/internal/common/errors"
	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
	"github.com/judzis-sketch/gedimu-registras/internal/notify"
	"github.com/judzis-sketch/gedimu-registras/internal/search"
	"github.com/judzis-sketch/gedimu-registras/internal/service"
)

// ActSearcher is the optional search backend; nil disables the route.
type ActSearcher interface {
	SearchActs(ctx context.Context, keywords string, size int) ([]search.ActDocument, error)
}

// Server routes JSON requests to the fault and worker services.
type Server struct {
	faults   *service.FaultService
	workers  *service.WorkerService
	searcher ActSearcher
	logger   logger.Logger
}

func NewServer(faults *service.FaultService, workers *service.WorkerService, searcher ActSearcher, log logger.Logger) *Server {
	return &Server{
		faults:   faults,
		workers:  workers,
		searcher: searcher,
		logger:   log.WithFields(map[string]interface{}{"component": "server"}),
	}
}

// Routes registers every API route on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/faults", s.handleReportFault)
	mux.HandleFunc("GET /api/faults", s.handleListFaults)
	mux.HandleFunc("GET /api/faults/{id}", s.handleGetFault)
	mux.HandleFunc("GET /api/faults/{id}/actions", s.handleActions)
	mux.HandleFunc("POST /api/faults/{id}/assign", s.handleAssign)
	mux.HandleFunc("POST /api/faults/{id}/start", s.handleStartWork)
	mux.HandleFunc("POST /api/faults/{id}/signatures/technician", s.handleTechnicianSignature)
	mux.HandleFunc("POST /api/faults/{id}/signatures/customer", s.handleCustomerSignature)
	mux.HandleFunc("GET /api/faults/{id}/act", s.handleDownloadAct)
	mux.HandleFunc("POST /api/archive", s.handleArchive)

	mux.HandleFunc("POST /api/workers", s.handleCreateWorker)
	mux.HandleFunc("GET /api/workers", s.handleListWorkers)
	mux.HandleFunc("GET /api/workers/{id}", s.handleGetWorker)
	mux.HandleFunc("DELETE /api/workers/{id}", s.handleDeleteWorker)

	mux.HandleFunc("GET /api/acts/search", s.handleSearchActs)

	return mux
}

// faultResponse pairs a fault with its draft compose links when a
// notification was prepared.
type faultResponse struct {
	Fault     *models.Fault `json:"fault"`
	MailtoURL string        `json:"mailtoUrl,omitempty"`
	SMSURL    string        `json:"smsUrl,omitempty"`
}

func newFaultResponse(f *models.Fault, draft *models.NotificationDraft) faultResponse {
	resp := faultResponse{Fault: f}
	if draft != nil {
		resp.MailtoURL = notify.MailtoURL(draft)
		resp.SMSURL = notify.SMSURL(draft)
	}
	return resp
}

func (s *Server) handleReportFault(w http.ResponseWriter, r *http.Request) {
	var input models.NewFaultInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, commonerrors.NewValidationFailedError("malformed request body"))
		return
	}

	f, draft, err := s.faults.ReportFault(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, newFaultResponse(f, draft))
}

func (s *Server) handleListFaults(w http.ResponseWriter, r *http.Request) {
	faults, err := s.faults.ListFaults(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, faults)
}

func (s *Server) handleGetFault(w http.ResponseWriter, r *http.Request) {
	f, err := s.faults.GetFault(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	actions, err := s.faults.AvailableActions(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"actions": actions})
}

func (s *Server) handleAssign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TechnicianID string `json:"technicianId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TechnicianID == "" {
		s.writeError(w, commonerrors.NewValidationFailedError("technicianId is required"))
		return
	}

	faultID := r.PathValue("id")
	draft, err := s.faults.AssignTechnician(r.Context(), faultID, body.TechnicianID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	f, err := s.faults.GetFault(r.Context(), faultID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newFaultResponse(f, draft))
}

func (s *Server) handleStartWork(w http.ResponseWriter, r *http.Request) {
	faultID := r.PathValue("id")
	draft, err := s.faults.StartWork(r.Context(), faultID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	f, err := s.faults.GetFault(r.Context(), faultID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newFaultResponse(f, draft))
}

// signatureBody carries a base64-encoded PNG, the natural JSON encoding of
// Go byte slices.
type signatureBody struct {
	Image []byte `json:"image"`
}

func (s *Server) handleTechnicianSignature(w http.ResponseWriter, r *http.Request) {
	var body signatureBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, commonerrors.NewValidationFailedError("malformed request body"))
		return
	}

	if err := s.faults.CaptureTechnicianSignature(r.Context(), r.PathValue("id"), body.Image); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "signed"})
}

func (s *Server) handleCustomerSignature(w http.ResponseWriter, r *http.Request) {
	var body signatureBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, commonerrors.NewValidationFailedError("malformed request body"))
		return
	}

	faultID := r.PathValue("id")
	draft, err := s.faults.CaptureCustomerSignature(r.Context(), faultID, body.Image)
	if err != nil {
		s.writeError(w, err)
		return
	}

	f, err := s.faults.GetFault(r.Context(), faultID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newFaultResponse(f, draft))
}

func (s *Server) handleDownloadAct(w http.ResponseWriter, r *http.Request) {
	doc, filename, err := s.faults.DownloadAct(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	result, err := s.faults.ArchiveCompletedActs(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Bundle)
}

func (s *Server) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var worker models.Worker
	if err := json.NewDecoder(r.Body).Decode(&worker); err != nil {
		s.writeError(w, commonerrors.NewValidationFailedError("malformed request body"))
		return
	}

	created, err := s.workers.CreateWorker(r.Context(), &worker)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := s.workers.ListWorkers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, workers)
}

func (s *Server) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := s.workers.GetWorker(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, worker)
}

func (s *Server) handleDeleteWorker(w http.ResponseWriter, r *http.Request) {
	if err := s.workers.DeleteWorker(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchActs(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		s.writeJSON(w, http.StatusNotImplemented, map[string]string{
			"error": "act search is not configured",
		})
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, commonerrors.NewValidationFailedError("query parameter q is required"))
		return
	}

	docs, err := s.searcher.SearchActs(r.Context(), q, 20)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encoding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Unknown errors
// become opaque 500s; taxonomy errors carry their code and details.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stdErr *commonerrors.StandardError
	if !errors.As(err, &stdErr) {
		s.logger.Error("unhandled error", map[string]interface{}{"error": err.Error()})
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch stdErr.Code {
	case commonerrors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	case commonerrors.ErrCodeDocumentNotFound, commonerrors.ErrCodeEmptyArchive:
		status = http.StatusNotFound
	case commonerrors.ErrCodeInvalidTransition, commonerrors.ErrCodeInvalidPhase,
		commonerrors.ErrCodeOperationInFlight:
		status = http.StatusConflict
	case commonerrors.ErrCodeCompositionFailed, commonerrors.ErrCodeStoreWriteFailed:
		status = http.StatusInternalServerError
	}

	s.writeJSON(w, status, map[string]interface{}{
		"code":      stdErr.Code,
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})
}
