package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	electionengine "ballotbox/contexts/election-operations/election-engine"
	electionerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
	electionhttp "ballotbox/contexts/election-operations/election-engine/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ballotbox/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	election electionengine.Module
}

func New(election electionengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		election: election,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/elections", s.handleCreateElection)
	s.mux.HandleFunc("GET /api/elections", s.handleListElections)
	s.mux.HandleFunc("GET /api/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("PUT /api/elections/{election_id}", s.handleUpdateElection)
	s.mux.HandleFunc("DELETE /api/elections/{election_id}", s.handleDeleteElection)
	s.mux.HandleFunc("PUT /api/elections/{election_id}/schedule", s.handleAttachSchedule)
	s.mux.HandleFunc("GET /api/elections/{election_id}/status", s.handleElectionStatus)
	s.mux.HandleFunc("POST /api/elections/{election_id}/end-early", s.handleEndElectionEarly)

	s.mux.HandleFunc("POST /api/elections/{election_id}/candidates", s.handleApplyCandidate)
	s.mux.HandleFunc("GET /api/elections/{election_id}/candidates", s.handleListCandidates)
	s.mux.HandleFunc("POST /api/candidates/{candidate_id}/approve", s.handleApproveCandidate)
	s.mux.HandleFunc("POST /api/candidates/{candidate_id}/reject", s.handleRejectCandidate)
	s.mux.HandleFunc("POST /api/candidates/{candidate_id}/revert", s.handleRevertCandidate)

	s.mux.HandleFunc("POST /api/contests/{contest_id}/votes", s.handleCastVote)

	s.mux.HandleFunc("GET /api/elections/{election_id}/tally", s.handleTallyPreview)
	s.mux.HandleFunc("POST /api/elections/{election_id}/tally", s.handleTally)
	s.mux.HandleFunc("GET /api/elections/{election_id}/results", s.handleResults)
	s.mux.HandleFunc("POST /api/elections/{election_id}/winner", s.handleDeclareWinner)
}

func (s *Server) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	var req electionhttp.CreateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.CreateElectionHandler(r.Context(), adminID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListElections(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ListElectionsHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.GetElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateElection(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	var req electionhttp.UpdateElectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.UpdateElectionHandler(r.Context(), r.PathValue("election_id"), adminID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteElection(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	if err := s.election.Handler.DeleteElectionHandler(r.Context(), r.PathValue("election_id"), adminID); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAttachSchedule(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	var req electionhttp.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.AttachScheduleHandler(r.Context(), r.PathValue("election_id"), adminID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleElectionStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ElectionStatusHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEndElectionEarly(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	if err := s.election.Handler.EndElectionEarlyHandler(r.Context(), r.PathValue("election_id"), adminID); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApplyCandidate(w http.ResponseWriter, r *http.Request) {
	voterID := resolveVoterID(r)
	if voterID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Id header is required")
		return
	}

	var req electionhttp.ApplyCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.election.Handler.ApplyCandidateHandler(r.Context(), r.PathValue("election_id"), voterID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ListCandidatesHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveCandidate(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	req := electionhttp.ApproveCandidateRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	resp, err := s.election.Handler.ApproveCandidateHandler(r.Context(), r.PathValue("candidate_id"), adminID, req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectCandidate(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	req := electionhttp.RejectCandidateRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return
		}
	}

	if err := s.election.Handler.RejectCandidateHandler(r.Context(), r.PathValue("candidate_id"), adminID, req); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRevertCandidate(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	if err := s.election.Handler.RevertCandidateHandler(r.Context(), r.PathValue("candidate_id"), adminID); err != nil {
		writeElectionDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voterID := resolveVoterID(r)
	if voterID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_voter", "X-Voter-Id header is required")
		return
	}

	resp, err := s.election.Handler.CastVoteHandler(
		r.Context(),
		r.PathValue("contest_id"),
		voterID,
		resolveClientIP(r),
	)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleTallyPreview(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.TallyPreviewHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.TallyHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.election.Handler.ResultsHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeclareWinner(w http.ResponseWriter, r *http.Request) {
	adminID := resolveAdminID(r)
	if adminID == "" {
		writeElectionError(w, http.StatusUnauthorized, "missing_admin", "X-Admin-Id header is required")
		return
	}

	resp, err := s.election.Handler.DeclareWinnerHandler(r.Context(), r.PathValue("election_id"), adminID)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, electionerrors.ErrInvalidInput):
		writeElectionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotFound):
		writeElectionError(w, http.StatusNotFound, "election_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrCandidateNotFound):
		writeElectionError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrContestNotFound):
		writeElectionError(w, http.StatusNotFound, "contest_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrDuplicateApplication):
		writeElectionError(w, http.StatusConflict, "duplicate_application", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidStateTransition):
		writeElectionError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, electionerrors.ErrVotingNotOpen):
		writeElectionError(w, http.StatusConflict, "voting_not_open", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, electionerrors.ErrElectionNotEnded):
		writeElectionError(w, http.StatusConflict, "election_not_ended", err.Error())
	case errors.Is(err, electionerrors.ErrNoCandidates):
		writeElectionError(w, http.StatusConflict, "no_candidates", err.Error())
	case errors.Is(err, electionerrors.ErrTieUnresolved):
		writeElectionError(w, http.StatusConflict, "tie_unresolved", err.Error())
	case errors.Is(err, electionerrors.ErrWinnerAlreadyDeclared):
		writeElectionError(w, http.StatusConflict, "winner_already_declared", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}

func resolveAdminID(r *http.Request) string {
	if adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id")); adminID != "" {
		return adminID
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func resolveVoterID(r *http.Request) string {
	if voterID := strings.TrimSpace(r.Header.Get("X-Voter-Id")); voterID != "" {
		return voterID
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
