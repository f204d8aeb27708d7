package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	electionengine "ballotbox/contexts/election-operations/election-engine"
	electionhttp "ballotbox/contexts/election-operations/election-engine/transport/http"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(electionengine.NewInMemoryModule(nil), nil, ":0")
}

func doJSON(t *testing.T, s *Server, method string, path string, headers map[string]string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp electionhttp.ErrorResponse
	decodeInto(t, rec, &resp)
	return resp.Code
}

var adminHeaders = map[string]string{"X-Admin-Id": "admin-1"}

func TestServerRequiresAdminHeader(t *testing.T) {
	s := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/elections"},
		{http.MethodPut, "/api/elections/election-1"},
		{http.MethodDelete, "/api/elections/election-1"},
		{http.MethodPut, "/api/elections/election-1/schedule"},
		{http.MethodPost, "/api/elections/election-1/end-early"},
		{http.MethodPost, "/api/candidates/cand-1/approve"},
		{http.MethodPost, "/api/candidates/cand-1/reject"},
		{http.MethodPost, "/api/candidates/cand-1/revert"},
		{http.MethodPost, "/api/elections/election-1/winner"},
	}
	for _, p := range paths {
		rec := doJSON(t, s, p.method, p.path, nil, map[string]any{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s without admin header: expected 401, got %d", p.method, p.path, rec.Code)
		}
		if code := errorCode(t, rec); code != "missing_admin" {
			t.Fatalf("%s %s: expected missing_admin, got %q", p.method, p.path, code)
		}
	}
}

func TestServerAcceptsUserIDFallback(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/elections", map[string]string{"X-User-Id": "admin-9"}, electionhttp.CreateElectionRequest{
		Name:   "Club Vote",
		Date:   time.Now().UTC(),
		Active: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with X-User-Id fallback, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestServerRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/elections", adminHeaders, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %q", code)
	}
}

func TestServerUnknownElection(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/elections/missing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "election_not_found" {
		t.Fatalf("expected election_not_found, got %q", code)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/elections/missing/tally", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("tally for missing election: expected 404, got %d", rec.Code)
	}
}

func TestServerUnknownContest(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/contests/missing/votes", map[string]string{"X-Voter-Id": "voter-1"}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "contest_not_found" {
		t.Fatalf("expected contest_not_found, got %q", code)
	}
}

func TestServerValidationError(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/elections", adminHeaders, electionhttp.CreateElectionRequest{
		Name: "   ",
		Date: time.Now().UTC(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "invalid_request" {
		t.Fatalf("expected invalid_request, got %q", code)
	}
}

func TestServerElectionLifecycleFlow(t *testing.T) {
	s := newTestServer(t)
	now := time.Now().UTC()

	// Create an election whose date is today so voting is open by default.
	rec := doJSON(t, s, http.MethodPost, "/api/elections", adminHeaders, electionhttp.CreateElectionRequest{
		Name:        "Treasurer 2026",
		Category:    "board",
		Date:        now,
		Description: "Annual treasurer race",
		Active:      true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create election: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var election electionhttp.ElectionResponse
	decodeInto(t, rec, &election)
	if election.ElectionID == "" {
		t.Fatalf("created election must carry an id: %+v", election)
	}
	if election.Status != "ongoing" {
		t.Fatalf("election dated today must be ongoing, got %q", election.Status)
	}

	// Candidacy: apply, duplicate is refused, then approve into a contest.
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/candidates", election.ElectionID),
		map[string]string{"X-Voter-Id": "hopeful-1"}, electionhttp.ApplyCandidateRequest{Name: "Ada Quorum", Party: "Independent"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply candidate: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var candidate electionhttp.CandidateResponse
	decodeInto(t, rec, &candidate)
	if candidate.Status != "pending" {
		t.Fatalf("fresh application must be pending, got %q", candidate.Status)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/candidates", election.ElectionID),
		map[string]string{"X-Voter-Id": "hopeful-1"}, electionhttp.ApplyCandidateRequest{Name: "Ada Quorum"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate application: expected 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "duplicate_application" {
		t.Fatalf("expected duplicate_application, got %q", code)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/candidates/%s/approve", candidate.CandidateID), adminHeaders, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve candidate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var contest electionhttp.ContestResponse
	decodeInto(t, rec, &contest)
	if contest.ContestID == "" || contest.CandidateID != candidate.CandidateID {
		t.Fatalf("approval must bind a contest to the candidate: %+v", contest)
	}

	// Ballots: first cast lands, the same voter is refused after that.
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/contests/%s/votes", contest.ContestID),
		map[string]string{"X-Voter-Id": "voter-1"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("cast vote: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var receipt electionhttp.VoteReceiptResponse
	decodeInto(t, rec, &receipt)
	if receipt.VoteID == "" {
		t.Fatalf("vote receipt must carry an id: %+v", receipt)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/contests/%s/votes", contest.ContestID),
		map[string]string{"X-Voter-Id": "voter-1"}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second ballot: expected 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "already_voted" {
		t.Fatalf("expected already_voted, got %q", code)
	}

	// Tally reflects exactly the recorded ballots.
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/tally", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tally: expected 200, got %d", rec.Code)
	}
	var tally electionhttp.TallyResponse
	decodeInto(t, rec, &tally)
	if tally.TotalVotes != 1 || len(tally.Rows) != 1 || tally.Rows[0].CandidateID != candidate.CandidateID {
		t.Fatalf("unexpected tally: %+v", tally)
	}

	// Close the race, then declare and read back the winner.
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/end-early", election.ElectionID), adminHeaders, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("end early: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/winner", election.ElectionID), adminHeaders, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("declare winner: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var winner electionhttp.WinnerResponse
	decodeInto(t, rec, &winner)
	if winner.CandidateID != candidate.CandidateID || winner.Votes != 1 {
		t.Fatalf("unexpected winner: %+v", winner)
	}

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/winner", election.ElectionID), adminHeaders, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second declaration: expected 409, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "winner_already_declared" {
		t.Fatalf("expected winner_already_declared, got %q", code)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/results", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results: expected 200, got %d", rec.Code)
	}
	var results electionhttp.ResultListResponse
	decodeInto(t, rec, &results)
	if len(results.Items) != 1 || results.Items[0].TotalVotes != 1 {
		t.Fatalf("unexpected results snapshot: %+v", results)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/status", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	var status electionhttp.StatusResponse
	decodeInto(t, rec, &status)
	if status.Status != "ended" {
		t.Fatalf("election must read as ended after the winner call, got %q", status.Status)
	}
}

func TestServerTallyGetIsReadOnly(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/elections", adminHeaders, electionhttp.CreateElectionRequest{
		Name:   "Read Only Race",
		Date:   time.Now().UTC(),
		Active: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create election: expected 201, got %d", rec.Code)
	}
	var election electionhttp.ElectionResponse
	decodeInto(t, rec, &election)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/candidates", election.ElectionID),
		map[string]string{"X-Voter-Id": "hopeful-1"}, electionhttp.ApplyCandidateRequest{Name: "Grace Ledger"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply candidate: expected 201, got %d", rec.Code)
	}
	var candidate electionhttp.CandidateResponse
	decodeInto(t, rec, &candidate)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/candidates/%s/approve", candidate.CandidateID), adminHeaders, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve candidate: expected 200, got %d", rec.Code)
	}
	var contest electionhttp.ContestResponse
	decodeInto(t, rec, &contest)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/contests/%s/votes", contest.ContestID),
		map[string]string{"X-Voter-Id": "voter-1"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("cast vote: expected 201, got %d", rec.Code)
	}

	// A GET computes the tally but must leave the snapshot untouched.
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/tally", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tally read: expected 200, got %d", rec.Code)
	}
	var tally electionhttp.TallyResponse
	decodeInto(t, rec, &tally)
	if tally.TotalVotes != 1 {
		t.Fatalf("unexpected tally: %+v", tally)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/results", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results: expected 200, got %d", rec.Code)
	}
	var results electionhttp.ResultListResponse
	decodeInto(t, rec, &results)
	if len(results.Items) != 0 {
		t.Fatalf("reading the tally must not persist a snapshot: %+v", results.Items)
	}

	// The POST is the recompute-and-persist path.
	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/tally", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tally recompute: expected 200, got %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/results", election.ElectionID), nil, nil)
	decodeInto(t, rec, &results)
	if len(results.Items) != 1 || results.Items[0].TotalVotes != 1 {
		t.Fatalf("recompute must persist the snapshot: %+v", results.Items)
	}
}

func TestServerDeclareWinnerWhileOngoing(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/elections", adminHeaders, electionhttp.CreateElectionRequest{
		Name:   "Open Race",
		Date:   time.Now().UTC(),
		Active: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create election: expected 201, got %d", rec.Code)
	}
	var election electionhttp.ElectionResponse
	decodeInto(t, rec, &election)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/elections/%s/winner", election.ElectionID), adminHeaders, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("declaring mid-race: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "election_not_ended" {
		t.Fatalf("expected election_not_ended, got %q", code)
	}
}

func TestServerScheduleValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/elections", adminHeaders, electionhttp.CreateElectionRequest{
		Name: "Scheduled Race",
		Date: time.Now().UTC().Add(48 * time.Hour),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create election: expected 201, got %d", rec.Code)
	}
	var election electionhttp.ElectionResponse
	decodeInto(t, rec, &election)

	start := time.Now().UTC().Add(72 * time.Hour)
	end := start.Add(-time.Hour)
	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/elections/%s/schedule", election.ElectionID), adminHeaders, electionhttp.ScheduleRequest{
		VotingStart: &start,
		VotingEnd:   &end,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("inverted window: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	end = start.Add(2 * time.Hour)
	rec = doJSON(t, s, http.MethodPut, fmt.Sprintf("/api/elections/%s/schedule", election.ElectionID), adminHeaders, electionhttp.ScheduleRequest{
		VotingStart: &start,
		VotingEnd:   &end,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("valid window: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var sched electionhttp.ScheduleResponse
	decodeInto(t, rec, &sched)
	if sched.VotingStart == nil || !sched.VotingStart.Equal(start) {
		t.Fatalf("schedule must echo the stored window: %+v", sched)
	}

	rec = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/elections/%s/status", election.ElectionID), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", rec.Code)
	}
	var status electionhttp.StatusResponse
	decodeInto(t, rec, &status)
	if status.Status != "upcoming" {
		t.Fatalf("future window must read upcoming, got %q", status.Status)
	}
}

func TestServerSwaggerMounted(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("swagger doc: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Ballotbox API") {
		t.Fatalf("swagger doc must describe this service")
	}
}
