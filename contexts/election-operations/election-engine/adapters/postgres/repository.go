package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/election-operations/election-engine/domain/entities"
	domainerrors "ballotbox/contexts/election-operations/election-engine/domain/errors"
	"ballotbox/contexts/election-operations/election-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveElection(ctx context.Context, election entities.Election) error {
	row := electionModelFromEntity(election)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":          row.Name,
			"category":      row.Category,
			"election_date": row.ElectionDate,
			"active":        row.Active,
			"description":   row.Description,
			"admin_id":      row.AdminID,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_election_failed", create.Error,
			"election_id", strings.TrimSpace(election.ElectionID),
		)
	}
	return nil
}

func (r *Repository) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var row electionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Election{}, domainerrors.ErrElectionNotFound
		}
		return entities.Election{}, r.logError("election_repo_get_election_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListElections(ctx context.Context) ([]entities.Election, error) {
	var rows []electionModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_elections_failed", err)
	}
	items := make([]entities.Election, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteElectionCascade(ctx context.Context, electionID string) error {
	electionID = strings.TrimSpace(electionID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("election_id = ?", electionID).Delete(&resultModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", electionID).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", electionID).Delete(&contestModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", electionID).Delete(&candidateModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("election_id = ?", electionID).Delete(&scheduleModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", electionID).Delete(&electionModel{}).Error
	})
	if err != nil {
		return r.logError("election_repo_delete_election_failed", err, "election_id", electionID)
	}
	return nil
}

func (r *Repository) GetSchedule(ctx context.Context, electionID string) (entities.Schedule, bool, error) {
	var row scheduleModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Schedule{}, false, nil
		}
		return entities.Schedule{}, false, r.logError("election_repo_get_schedule_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveSchedule(ctx context.Context, sched entities.Schedule) error {
	row := scheduleModelFromEntity(sched)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "election_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"nomination_start": row.NominationStart,
			"nomination_end":   row.NominationEnd,
			"voting_start":     row.VotingStart,
			"voting_end":       row.VotingEnd,
			"results_declared": row.ResultsDeclared,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_schedule_failed", create.Error,
			"election_id", strings.TrimSpace(sched.ElectionID),
		)
	}
	return nil
}

func (r *Repository) MarkWinner(ctx context.Context, electionID string, candidateID string, declaredAt time.Time) error {
	electionID = strings.TrimSpace(electionID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row electionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", electionID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrElectionNotFound
			}
			return err
		}
		if row.WinnerDeclared {
			return domainerrors.ErrWinnerAlreadyDeclared
		}
		winner := strings.TrimSpace(candidateID)
		at := declaredAt.UTC()
		return tx.Model(&electionModel{}).
			Where("id = ?", electionID).
			Updates(map[string]any{
				"winner_declared":     true,
				"winner_candidate_id": winner,
				"winner_declared_at":  at,
				"updated_at":          at,
			}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrElectionNotFound) ||
			errors.Is(err, domainerrors.ErrWinnerAlreadyDeclared) {
			return err
		}
		return r.logError("election_repo_mark_winner_failed", err,
			"election_id", electionID,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return nil
}

func (r *Repository) SaveCandidate(ctx context.Context, candidate entities.Candidate) error {
	row := candidateModelFromEntity(candidate)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":             row.Name,
			"party":            row.Party,
			"symbol":           row.Symbol,
			"manifesto":        row.Manifesto,
			"photo_url":        row.PhotoURL,
			"status":           row.Status,
			"rejection_reason": row.RejectionReason,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_candidate_failed", create.Error,
			"candidate_id", strings.TrimSpace(candidate.CandidateID),
			"election_id", strings.TrimSpace(candidate.ElectionID),
		)
	}
	return nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, domainerrors.ErrCandidateNotFound
		}
		return entities.Candidate{}, r.logError("election_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCandidatesByElection(ctx context.Context, electionID string) ([]entities.Candidate, error) {
	var rows []candidateModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_candidates_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Candidate, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FindLiveApplication(ctx context.Context, electionID string, voterID string) (entities.Candidate, bool, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("status IN ?", []string{
			string(entities.CandidateStatusPending),
			string(entities.CandidateStatusApproved),
		}).
		Order("updated_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Candidate{}, false, nil
		}
		return entities.Candidate{}, false, r.logError("election_repo_find_live_application_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SaveContest(ctx context.Context, contest entities.Contest) error {
	row := contestModelFromEntity(contest)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "candidate_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_save_contest_failed", create.Error,
			"contest_id", strings.TrimSpace(contest.ContestID),
			"candidate_id", strings.TrimSpace(contest.CandidateID),
		)
	}
	return nil
}

func (r *Repository) GetContest(ctx context.Context, contestID string) (entities.Contest, error) {
	var row contestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(contestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, domainerrors.ErrContestNotFound
		}
		return entities.Contest{}, r.logError("election_repo_get_contest_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) GetContestByCandidate(ctx context.Context, candidateID string) (entities.Contest, bool, error) {
	var row contestModel
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Contest{}, false, nil
		}
		return entities.Contest{}, false, r.logError("election_repo_get_contest_by_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListContestsByElection(ctx context.Context, electionID string) ([]entities.Contest, error) {
	var rows []contestModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_contests_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Contest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteContest(ctx context.Context, contestID string) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(contestID)).
		Delete(&contestModel{}).Error; err != nil {
		return r.logError("election_repo_delete_contest_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	return nil
}

func (r *Repository) InsertVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			// The composite (election_id, voter_id) index turns the lost half
			// of a double-submit race into a deterministic conflict.
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("election_repo_insert_vote_failed", err,
			"vote_id", strings.TrimSpace(vote.VoteID),
			"election_id", strings.TrimSpace(vote.ElectionID),
		)
	}
	return nil
}

func (r *Repository) HasVoted(ctx context.Context, electionID string, voterID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("election_repo_has_voted_failed", err,
			"election_id", strings.TrimSpace(electionID),
			"voter_id", strings.TrimSpace(voterID),
		)
	}
	return count > 0, nil
}

func (r *Repository) CountVotesByContest(ctx context.Context, contestID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("contest_id = ?", strings.TrimSpace(contestID)).
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("election_repo_count_votes_failed", err,
			"contest_id", strings.TrimSpace(contestID),
		)
	}
	return int(count), nil
}

func (r *Repository) ListVotesByElection(ctx context.Context, electionID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_votes_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ReplaceResults(ctx context.Context, electionID string, results []entities.Result) error {
	electionID = strings.TrimSpace(electionID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("election_id = ?", electionID).Delete(&resultModel{}).Error; err != nil {
			return err
		}
		if len(results) == 0 {
			return nil
		}
		rows := make([]resultModel, 0, len(results))
		for _, result := range results {
			rows = append(rows, resultModelFromEntity(result))
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return r.logError("election_repo_replace_results_failed", err, "election_id", electionID)
	}
	return nil
}

func (r *Repository) ListResultsByElection(ctx context.Context, electionID string) ([]entities.Result, error) {
	var rows []resultModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", strings.TrimSpace(electionID)).
		Order("total_votes DESC, candidate_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_results_failed", err,
			"election_id", strings.TrimSpace(electionID),
		)
	}
	items := make([]entities.Result, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election-operations/election-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type electionModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	Name              string     `gorm:"column:name"`
	Category          string     `gorm:"column:category"`
	ElectionDate      time.Time  `gorm:"column:election_date"`
	Active            bool       `gorm:"column:active"`
	Description       string     `gorm:"column:description"`
	AdminID           string     `gorm:"column:admin_id"`
	WinnerDeclared    bool       `gorm:"column:winner_declared"`
	WinnerCandidateID *string    `gorm:"column:winner_candidate_id"`
	WinnerDeclaredAt  *time.Time `gorm:"column:winner_declared_at"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (electionModel) TableName() string {
	return "elections"
}

func electionModelFromEntity(election entities.Election) electionModel {
	row := electionModel{
		ID:               strings.TrimSpace(election.ElectionID),
		Name:             strings.TrimSpace(election.Name),
		Category:         strings.TrimSpace(election.Category),
		ElectionDate:     election.Date.UTC(),
		Active:           election.Active,
		Description:      strings.TrimSpace(election.Description),
		AdminID:          strings.TrimSpace(election.AdminID),
		WinnerDeclared:   election.WinnerDeclared,
		WinnerDeclaredAt: normalizeOptionalTime(election.WinnerDeclaredAt),
		CreatedAt:        election.CreatedAt.UTC(),
		UpdatedAt:        election.UpdatedAt.UTC(),
	}
	if strings.TrimSpace(election.WinnerCandidateID) != "" {
		winner := strings.TrimSpace(election.WinnerCandidateID)
		row.WinnerCandidateID = &winner
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m electionModel) toEntity() entities.Election {
	winner := ""
	if m.WinnerCandidateID != nil {
		winner = strings.TrimSpace(*m.WinnerCandidateID)
	}
	return entities.Election{
		ElectionID:        m.ID,
		Name:              m.Name,
		Category:          m.Category,
		Date:              m.ElectionDate.UTC(),
		Active:            m.Active,
		Description:       m.Description,
		AdminID:           m.AdminID,
		WinnerDeclared:    m.WinnerDeclared,
		WinnerCandidateID: winner,
		WinnerDeclaredAt:  normalizeOptionalTime(m.WinnerDeclaredAt),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type scheduleModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	ElectionID      string     `gorm:"column:election_id;uniqueIndex:idx_schedules_election"`
	NominationStart *time.Time `gorm:"column:nomination_start"`
	NominationEnd   *time.Time `gorm:"column:nomination_end"`
	VotingStart     *time.Time `gorm:"column:voting_start"`
	VotingEnd       *time.Time `gorm:"column:voting_end"`
	ResultsDeclared *time.Time `gorm:"column:results_declared"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (scheduleModel) TableName() string {
	return "election_schedules"
}

func scheduleModelFromEntity(sched entities.Schedule) scheduleModel {
	row := scheduleModel{
		ID:              strings.TrimSpace(sched.ScheduleID),
		ElectionID:      strings.TrimSpace(sched.ElectionID),
		NominationStart: normalizeOptionalTime(sched.NominationStart),
		NominationEnd:   normalizeOptionalTime(sched.NominationEnd),
		VotingStart:     normalizeOptionalTime(sched.VotingStart),
		VotingEnd:       normalizeOptionalTime(sched.VotingEnd),
		ResultsDeclared: normalizeOptionalTime(sched.ResultsDeclared),
		CreatedAt:       sched.CreatedAt.UTC(),
		UpdatedAt:       sched.UpdatedAt.UTC(),
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m scheduleModel) toEntity() entities.Schedule {
	return entities.Schedule{
		ScheduleID:      m.ID,
		ElectionID:      m.ElectionID,
		NominationStart: normalizeOptionalTime(m.NominationStart),
		NominationEnd:   normalizeOptionalTime(m.NominationEnd),
		VotingStart:     normalizeOptionalTime(m.VotingStart),
		VotingEnd:       normalizeOptionalTime(m.VotingEnd),
		ResultsDeclared: normalizeOptionalTime(m.ResultsDeclared),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type candidateModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ElectionID      string    `gorm:"column:election_id"`
	VoterID         string    `gorm:"column:voter_id"`
	Name            string    `gorm:"column:name"`
	Party           string    `gorm:"column:party"`
	Symbol          string    `gorm:"column:symbol"`
	Manifesto       string    `gorm:"column:manifesto"`
	PhotoURL        string    `gorm:"column:photo_url"`
	Status          string    `gorm:"column:status"`
	RejectionReason string    `gorm:"column:rejection_reason"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func candidateModelFromEntity(candidate entities.Candidate) candidateModel {
	row := candidateModel{
		ID:              strings.TrimSpace(candidate.CandidateID),
		ElectionID:      strings.TrimSpace(candidate.ElectionID),
		VoterID:         strings.TrimSpace(candidate.VoterID),
		Name:            strings.TrimSpace(candidate.Name),
		Party:           strings.TrimSpace(candidate.Party),
		Symbol:          strings.TrimSpace(candidate.Symbol),
		Manifesto:       candidate.Manifesto,
		PhotoURL:        strings.TrimSpace(candidate.PhotoURL),
		Status:          string(candidate.Status),
		RejectionReason: strings.TrimSpace(candidate.RejectionReason),
		CreatedAt:       candidate.CreatedAt.UTC(),
		UpdatedAt:       candidate.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID:     m.ID,
		ElectionID:      m.ElectionID,
		VoterID:         m.VoterID,
		Name:            m.Name,
		Party:           m.Party,
		Symbol:          m.Symbol,
		Manifesto:       m.Manifesto,
		PhotoURL:        m.PhotoURL,
		Status:          entities.CandidateStatus(m.Status),
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type contestModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ElectionID  string    `gorm:"column:election_id"`
	CandidateID string    `gorm:"column:candidate_id;uniqueIndex:idx_contests_candidate"`
	Position    string    `gorm:"column:position"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (contestModel) TableName() string {
	return "contests"
}

func contestModelFromEntity(contest entities.Contest) contestModel {
	row := contestModel{
		ID:          strings.TrimSpace(contest.ContestID),
		ElectionID:  strings.TrimSpace(contest.ElectionID),
		CandidateID: strings.TrimSpace(contest.CandidateID),
		Position:    strings.TrimSpace(contest.Position),
		CreatedAt:   contest.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m contestModel) toEntity() entities.Contest {
	return entities.Contest{
		ContestID:   m.ID,
		ElectionID:  m.ElectionID,
		CandidateID: m.CandidateID,
		Position:    m.Position,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type voteModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	ContestID     string    `gorm:"column:contest_id"`
	ElectionID    string    `gorm:"column:election_id;uniqueIndex:idx_votes_election_voter"`
	VoterID       string    `gorm:"column:voter_id;uniqueIndex:idx_votes_election_voter"`
	SourceAddress string    `gorm:"column:source_address"`
	CastAt        time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:            strings.TrimSpace(vote.VoteID),
		ContestID:     strings.TrimSpace(vote.ContestID),
		ElectionID:    strings.TrimSpace(vote.ElectionID),
		VoterID:       strings.TrimSpace(vote.VoterID),
		SourceAddress: strings.TrimSpace(vote.SourceAddress),
		CastAt:        vote.CastAt.UTC(),
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:        m.ID,
		ContestID:     m.ContestID,
		ElectionID:    m.ElectionID,
		VoterID:       m.VoterID,
		SourceAddress: m.SourceAddress,
		CastAt:        m.CastAt.UTC(),
	}
}

type resultModel struct {
	ElectionID  string    `gorm:"column:election_id;primaryKey"`
	CandidateID string    `gorm:"column:candidate_id;primaryKey"`
	ContestID   string    `gorm:"column:contest_id"`
	TotalVotes  int       `gorm:"column:total_votes"`
	Percentage  float64   `gorm:"column:percentage"`
	ComputedAt  time.Time `gorm:"column:computed_at"`
}

func (resultModel) TableName() string {
	return "election_results"
}

func resultModelFromEntity(result entities.Result) resultModel {
	row := resultModel{
		ElectionID:  strings.TrimSpace(result.ElectionID),
		CandidateID: strings.TrimSpace(result.CandidateID),
		ContestID:   strings.TrimSpace(result.ContestID),
		TotalVotes:  result.TotalVotes,
		Percentage:  result.Percentage,
		ComputedAt:  result.ComputedAt.UTC(),
	}
	if row.ComputedAt.IsZero() {
		row.ComputedAt = time.Now().UTC()
	}
	return row
}

func (m resultModel) toEntity() entities.Result {
	return entities.Result{
		ElectionID:  m.ElectionID,
		CandidateID: m.CandidateID,
		ContestID:   m.ContestID,
		TotalVotes:  m.TotalVotes,
		Percentage:  m.Percentage,
		ComputedAt:  m.ComputedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	utc := value.UTC()
	return &utc
}

// SystemClock satisfies ports.Clock with the process wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator satisfies ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ElectionRepository = (*Repository)(nil)
var _ ports.CandidateRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.ResultRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
