package schedule

import (
	"time"

	"ballotbox/contexts/election-operations/election-engine/domain/entities"
)

// fallbackWindow is how long after Election.Date a scheduleless election can
// still count as ongoing, provided its activation flag is set.
const fallbackWindow = 24 * time.Hour

// Resolve computes the canonical temporal status of an election. It is the
// single status authority; every caller consumes this function instead of
// re-deriving status from raw timestamps.
//
// A schedule with both voting timestamps is authoritative:
// now < start is upcoming, start <= now <= end is ongoing, now > end is
// ended. Without a complete voting window the nominal Election.Date decides:
// before the date the election is upcoming; within one day after the date it
// is ongoing only while the activation flag is set; beyond that it is ended.
//
// Resolve is a pure function of its inputs and never mutates stored state.
func Resolve(election entities.Election, sched *entities.Schedule, now time.Time) entities.ElectionStatus {
	now = now.UTC()

	if sched != nil && sched.HasVotingWindow() {
		start := sched.VotingStart.UTC()
		end := sched.VotingEnd.UTC()
		switch {
		case now.Before(start):
			return entities.StatusUpcoming
		case now.After(end):
			return entities.StatusEnded
		default:
			return entities.StatusOngoing
		}
	}

	date := election.Date.UTC()
	if now.Before(date) {
		return entities.StatusUpcoming
	}
	if now.Sub(date) <= fallbackWindow && election.Active {
		return entities.StatusOngoing
	}
	return entities.StatusEnded
}
