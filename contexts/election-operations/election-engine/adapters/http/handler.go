package httpadapter

import (
	"context"
	"log/slog"

	"ballotbox/contexts/election-operations/election-engine/application/commands"
	"ballotbox/contexts/election-operations/election-engine/application/queries"
	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	httptransport "ballotbox/contexts/election-operations/election-engine/transport/http"
)

type Handler struct {
	Elections commands.ElectionAdminUseCase
	Candidacy commands.CandidacyUseCase
	Ballots   commands.BallotUseCase
	Lifecycle commands.LifecycleUseCase
	Directory queries.DirectoryUseCase
	Logger    *slog.Logger
}

func (h Handler) CreateElectionHandler(
	ctx context.Context,
	adminID string,
	req httptransport.CreateElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.CreateElection(ctx, commands.CreateElectionCommand{
		Name:        req.Name,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
		Active:      req.Active,
		AdminID:     adminID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return h.GetElectionHandler(ctx, election.ElectionID)
}

func (h Handler) UpdateElectionHandler(
	ctx context.Context,
	electionID string,
	adminID string,
	req httptransport.UpdateElectionRequest,
) (httptransport.ElectionResponse, error) {
	election, err := h.Elections.UpdateElection(ctx, commands.UpdateElectionCommand{
		ElectionID:  electionID,
		Name:        req.Name,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
		Active:      req.Active,
		AdminID:     adminID,
	})
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return h.GetElectionHandler(ctx, election.ElectionID)
}

func (h Handler) DeleteElectionHandler(ctx context.Context, electionID string, adminID string) error {
	return h.Elections.DeleteElection(ctx, electionID, adminID)
}

func (h Handler) GetElectionHandler(ctx context.Context, electionID string) (httptransport.ElectionResponse, error) {
	view, err := h.Directory.GetElection(ctx, electionID)
	if err != nil {
		return httptransport.ElectionResponse{}, err
	}
	return mapElectionView(view), nil
}

func (h Handler) ListElectionsHandler(ctx context.Context) (httptransport.ElectionListResponse, error) {
	views, err := h.Directory.ListElections(ctx)
	if err != nil {
		return httptransport.ElectionListResponse{}, err
	}
	items := make([]httptransport.ElectionResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapElectionView(view))
	}
	return httptransport.ElectionListResponse{Items: items}, nil
}

func (h Handler) AttachScheduleHandler(
	ctx context.Context,
	electionID string,
	adminID string,
	req httptransport.ScheduleRequest,
) (httptransport.ScheduleResponse, error) {
	sched, err := h.Elections.AttachSchedule(ctx, commands.AttachScheduleCommand{
		ElectionID:      electionID,
		NominationStart: req.NominationStart,
		NominationEnd:   req.NominationEnd,
		VotingStart:     req.VotingStart,
		VotingEnd:       req.VotingEnd,
		AdminID:         adminID,
	})
	if err != nil {
		return httptransport.ScheduleResponse{}, err
	}
	return mapSchedule(sched), nil
}

func (h Handler) ElectionStatusHandler(ctx context.Context, electionID string) (httptransport.StatusResponse, error) {
	status, err := h.Lifecycle.Status(ctx, electionID)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return httptransport.StatusResponse{
		ElectionID: electionID,
		Status:     string(status),
	}, nil
}

func (h Handler) EndElectionEarlyHandler(ctx context.Context, electionID string, adminID string) error {
	return h.Lifecycle.EndEarly(ctx, commands.EndEarlyCommand{
		ElectionID: electionID,
		AdminID:    adminID,
	})
}

func (h Handler) ApplyCandidateHandler(
	ctx context.Context,
	electionID string,
	voterID string,
	req httptransport.ApplyCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Candidacy.Apply(ctx, commands.ApplyCommand{
		ElectionID: electionID,
		VoterID:    voterID,
		Name:       req.Name,
		Party:      req.Party,
		Symbol:     req.Symbol,
		Manifesto:  req.Manifesto,
		PhotoURL:   req.PhotoURL,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

func (h Handler) ApproveCandidateHandler(
	ctx context.Context,
	candidateID string,
	adminID string,
	req httptransport.ApproveCandidateRequest,
) (httptransport.ContestResponse, error) {
	contest, err := h.Candidacy.Approve(ctx, commands.ApproveCommand{
		CandidateID: candidateID,
		Position:    req.Position,
		AdminID:     adminID,
	})
	if err != nil {
		return httptransport.ContestResponse{}, err
	}
	return httptransport.ContestResponse{
		ContestID:   contest.ContestID,
		ElectionID:  contest.ElectionID,
		CandidateID: contest.CandidateID,
		Position:    contest.Position,
	}, nil
}

func (h Handler) RejectCandidateHandler(
	ctx context.Context,
	candidateID string,
	adminID string,
	req httptransport.RejectCandidateRequest,
) error {
	return h.Candidacy.Reject(ctx, commands.RejectCommand{
		CandidateID: candidateID,
		Reason:      req.Reason,
		AdminID:     adminID,
	})
}

func (h Handler) RevertCandidateHandler(ctx context.Context, candidateID string, adminID string) error {
	return h.Candidacy.RevertToPending(ctx, commands.RevertCommand{
		CandidateID: candidateID,
		AdminID:     adminID,
	})
}

func (h Handler) ListCandidatesHandler(ctx context.Context, electionID string) (httptransport.CandidateListResponse, error) {
	candidates, err := h.Directory.ListCandidates(ctx, electionID)
	if err != nil {
		return httptransport.CandidateListResponse{}, err
	}
	items := make([]httptransport.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, mapCandidate(candidate))
	}
	return httptransport.CandidateListResponse{Items: items}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	contestID string,
	voterID string,
	sourceAddress string,
) (httptransport.VoteReceiptResponse, error) {
	receipt, err := h.Ballots.Cast(ctx, commands.CastVoteCommand{
		ContestID:     contestID,
		VoterID:       voterID,
		SourceAddress: sourceAddress,
	})
	if err != nil {
		return httptransport.VoteReceiptResponse{}, err
	}
	return httptransport.VoteReceiptResponse{
		VoteID:     receipt.VoteID,
		RecordedAt: receipt.RecordedAt,
	}, nil
}

// TallyPreviewHandler is the read path: it computes the tally without
// replacing the Result snapshot.
func (h Handler) TallyPreviewHandler(ctx context.Context, electionID string) (httptransport.TallyResponse, error) {
	tally, err := h.Lifecycle.PreviewTally(ctx, electionID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return mapTally(tally), nil
}

func (h Handler) TallyHandler(ctx context.Context, electionID string) (httptransport.TallyResponse, error) {
	tally, err := h.Lifecycle.RequestTally(ctx, electionID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return mapTally(tally), nil
}

func (h Handler) DeclareWinnerHandler(
	ctx context.Context,
	electionID string,
	adminID string,
) (httptransport.WinnerResponse, error) {
	winner, err := h.Lifecycle.DeclareWinner(ctx, commands.DeclareWinnerCommand{
		ElectionID: electionID,
		AdminID:    adminID,
	})
	if err != nil {
		return httptransport.WinnerResponse{}, err
	}
	return httptransport.WinnerResponse{
		ElectionID:    electionID,
		CandidateID:   winner.CandidateID,
		CandidateName: winner.CandidateName,
		Votes:         winner.Votes,
	}, nil
}

func (h Handler) ResultsHandler(ctx context.Context, electionID string) (httptransport.ResultListResponse, error) {
	results, err := h.Directory.Results(ctx, electionID)
	if err != nil {
		return httptransport.ResultListResponse{}, err
	}
	items := make([]httptransport.ResultRowResponse, 0, len(results))
	for _, result := range results {
		items = append(items, httptransport.ResultRowResponse{
			ElectionID:  result.ElectionID,
			ContestID:   result.ContestID,
			CandidateID: result.CandidateID,
			TotalVotes:  result.TotalVotes,
			Percentage:  result.Percentage,
			ComputedAt:  result.ComputedAt,
		})
	}
	return httptransport.ResultListResponse{Items: items}, nil
}

func mapTally(tally entities.ElectionTally) httptransport.TallyResponse {
	rows := make([]httptransport.TallyRowResponse, 0, len(tally.Rows))
	for _, row := range tally.Rows {
		rows = append(rows, httptransport.TallyRowResponse{
			ContestID:     row.ContestID,
			CandidateID:   row.CandidateID,
			CandidateName: row.CandidateName,
			Position:      row.Position,
			Votes:         row.Votes,
			Percentage:    row.Percentage,
		})
	}
	return httptransport.TallyResponse{
		ElectionID: tally.ElectionID,
		TotalVotes: tally.TotalVotes,
		Tied:       tally.Tied,
		ComputedAt: tally.ComputedAt,
		Rows:       rows,
	}
}

func mapElectionView(view queries.ElectionView) httptransport.ElectionResponse {
	resp := httptransport.ElectionResponse{
		ElectionID:        view.Election.ElectionID,
		Name:              view.Election.Name,
		Category:          view.Election.Category,
		Date:              view.Election.Date,
		Active:            view.Election.Active,
		Description:       view.Election.Description,
		Status:            string(view.Status),
		WinnerDeclared:    view.Election.WinnerDeclared,
		WinnerCandidateID: view.Election.WinnerCandidateID,
	}
	if view.Schedule != nil {
		sched := mapSchedule(*view.Schedule)
		resp.Schedule = &sched
	}
	return resp
}

func mapSchedule(sched entities.Schedule) httptransport.ScheduleResponse {
	return httptransport.ScheduleResponse{
		ScheduleID:      sched.ScheduleID,
		ElectionID:      sched.ElectionID,
		NominationStart: sched.NominationStart,
		NominationEnd:   sched.NominationEnd,
		VotingStart:     sched.VotingStart,
		VotingEnd:       sched.VotingEnd,
		ResultsDeclared: sched.ResultsDeclared,
	}
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID:     candidate.CandidateID,
		ElectionID:      candidate.ElectionID,
		Name:            candidate.Name,
		Party:           candidate.Party,
		Symbol:          candidate.Symbol,
		Manifesto:       candidate.Manifesto,
		PhotoURL:        candidate.PhotoURL,
		Status:          string(candidate.Status),
		RejectionReason: candidate.RejectionReason,
	}
}
