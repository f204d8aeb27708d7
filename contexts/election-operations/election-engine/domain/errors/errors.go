package errors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrElectionNotFound       = errors.New("election not found")
	ErrCandidateNotFound      = errors.New("candidate not found")
	ErrContestNotFound        = errors.New("contest not found")
	ErrDuplicateApplication   = errors.New("voter already has an application for this election")
	ErrInvalidStateTransition = errors.New("candidate state transition is not allowed")
	ErrVotingNotOpen          = errors.New("voting is not open for this election")
	ErrAlreadyVoted           = errors.New("voter already cast a ballot in this election")
	ErrElectionNotEnded       = errors.New("election has not ended")
	ErrNoCandidates           = errors.New("election has no contesting candidates")
	ErrTieUnresolved          = errors.New("leading vote count is tied")
	ErrWinnerAlreadyDeclared  = errors.New("winner already declared for this election")
)
