package electionengine

import (
	"log/slog"

	httpadapter "ballotbox/contexts/election-operations/election-engine/adapters/http"
	"ballotbox/contexts/election-operations/election-engine/adapters/memory"
	"ballotbox/contexts/election-operations/election-engine/application/commands"
	"ballotbox/contexts/election-operations/election-engine/application/queries"
	"ballotbox/contexts/election-operations/election-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Elections        ports.ElectionRepository
	Candidates       ports.CandidateRepository
	Votes            ports.VoteRepository
	Results          ports.ResultRepository
	Outbox           ports.OutboxWriter
	Clock            ports.Clock
	IDGen            ports.IDGenerator
	SnapshotsEnabled bool
	WinnerEvents     bool
	Logger           *slog.Logger
}

func NewModule(deps Dependencies) Module {
	tallyUseCase := queries.TallyUseCase{
		Elections:  deps.Elections,
		Candidates: deps.Candidates,
		Votes:      deps.Votes,
		Clock:      deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Elections: commands.ElectionAdminUseCase{
				Elections: deps.Elections,
				Clock:     deps.Clock,
				IDGen:     deps.IDGen,
				Logger:    deps.Logger,
			},
			Candidacy: commands.CandidacyUseCase{
				Elections:  deps.Elections,
				Candidates: deps.Candidates,
				Outbox:     deps.Outbox,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Ballots: commands.BallotUseCase{
				Elections:  deps.Elections,
				Candidates: deps.Candidates,
				Votes:      deps.Votes,
				Outbox:     deps.Outbox,
				Clock:      deps.Clock,
				IDGen:      deps.IDGen,
				Logger:     deps.Logger,
			},
			Lifecycle: commands.LifecycleUseCase{
				Elections:        deps.Elections,
				Results:          deps.Results,
				Tally:            tallyUseCase,
				Outbox:           deps.Outbox,
				Clock:            deps.Clock,
				IDGen:            deps.IDGen,
				SnapshotsEnabled: deps.SnapshotsEnabled,
				WinnerEvents:     deps.WinnerEvents,
				Logger:           deps.Logger,
			},
			Directory: queries.DirectoryUseCase{
				Elections:  deps.Elections,
				Candidates: deps.Candidates,
				Snapshots:  deps.Results,
				Clock:      deps.Clock,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Elections:        store,
		Candidates:       store,
		Votes:            store,
		Results:          store,
		Outbox:           store,
		Clock:            store,
		IDGen:            store,
		SnapshotsEnabled: true,
		WinnerEvents:     true,
		Logger:           logger,
	})
	module.Store = store
	return module
}
