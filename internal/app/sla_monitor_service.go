package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/slawatch/internal/core/escalation"
	"github.com/example/slawatch/internal/ctxutil"
	"github.com/example/slawatch/internal/ports/primary"
	"github.com/example/slawatch/internal/ports/secondary"
)

// ActionResolveEscalation is the audit action written when an escalation is resolved.
const ActionResolveEscalation = "RESOLVE_ESCALATION"

// SLAMonitorOptions configures an SLAMonitorServiceImpl.
type SLAMonitorOptions struct {
	Rules         *escalation.RuleTable
	TargetRole    string
	DedupPending  bool
	StrictResolve bool
	Notifier      secondary.EscalationNotifier // optional
	Logger        logrus.FieldLogger
	Clock         func() time.Time
}

// SLAMonitorServiceImpl implements the SLAMonitorService interface.
type SLAMonitorServiceImpl struct {
	candidateRepo  secondary.CandidateRepository
	escalationRepo secondary.EscalationRepository
	activityRepo   secondary.ActivityLogRepository
	notifier       secondary.EscalationNotifier

	rules         *escalation.RuleTable
	targetRole    string
	dedupPending  bool
	strictResolve bool

	logger logrus.FieldLogger
	clock  func() time.Time
}

// NewSLAMonitorService creates a new SLAMonitorService with injected dependencies.
func NewSLAMonitorService(
	candidateRepo secondary.CandidateRepository,
	escalationRepo secondary.EscalationRepository,
	activityRepo secondary.ActivityLogRepository,
	opts SLAMonitorOptions,
) (*SLAMonitorServiceImpl, error) {
	rules := opts.Rules
	if rules == nil {
		var err error
		rules, err = escalation.DefaultRuleTable(24 * time.Hour)
		if err != nil {
			return nil, err
		}
	}
	for _, class := range escalation.MonitoredClasses() {
		if _, err := rules.Threshold(class.Kind); err != nil {
			return nil, fmt.Errorf("class %s: %w", class.Name, err)
		}
	}

	role := opts.TargetRole
	if role == "" {
		role = escalation.DefaultTargetRole
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	return &SLAMonitorServiceImpl{
		candidateRepo:  candidateRepo,
		escalationRepo: escalationRepo,
		activityRepo:   activityRepo,
		notifier:       opts.Notifier,
		rules:          rules,
		targetRole:     role,
		dedupPending:   opts.DedupPending,
		strictResolve:  opts.StrictResolve,
		logger:         logger.WithField("component", "sla_monitor"),
		clock:          clock,
	}, nil
}

// CheckAutoEscalation sweeps every monitored entity class and escalates
// breached entities. Failures are collected in the report and never abort the sweep.
func (s *SLAMonitorServiceImpl) CheckAutoEscalation(ctx context.Context, now time.Time) *primary.SweepReport {
	report := &primary.SweepReport{
		SweepID:   uuid.NewString(),
		StartedAt: now,
	}
	log := s.logger.WithField("sweep_id", report.SweepID)

	for _, class := range escalation.MonitoredClasses() {
		threshold, err := s.rules.Threshold(class.Kind)
		if err != nil {
			report.Failures = append(report.Failures, primary.CandidateFailure{
				Class:      class.Name,
				EntityType: string(class.EntityType),
				Err:        err,
			})
			log.WithError(err).Errorf("No rule for class %s", class.Name)
			continue
		}

		candidates, err := s.candidateRepo.FindBreachCandidates(ctx, secondary.CandidateQuery{
			Class:      class.Name,
			EntityType: string(class.EntityType),
			State:      class.StuckState,
			OlderThan:  escalation.Cutoff(now, threshold),
		})
		if err != nil {
			report.Failures = append(report.Failures, primary.CandidateFailure{
				Class:      class.Name,
				EntityType: string(class.EntityType),
				Err:        fmt.Errorf("%w: breach query: %w", primary.ErrCollaborator, err),
			})
			log.WithError(err).Errorf("Breach query failed for class %s", class.Name)
			continue
		}

		for _, c := range candidates {
			if !escalation.IsBreached(c.CreatedAt, now, threshold) {
				log.WithFields(logrus.Fields{
					"entity_type": c.EntityType,
					"entity_id":   c.EntityID,
				}).Debug("Candidate within SLA, ignoring")
				continue
			}
			report.Candidates++
			id, err := s.escalate(ctx, class, c, threshold, now)
			if err != nil {
				report.Failures = append(report.Failures, primary.CandidateFailure{
					Class:      class.Name,
					EntityType: c.EntityType,
					EntityID:   c.EntityID,
					Err:        err,
				})
				log.WithFields(logrus.Fields{
					"entity_type": c.EntityType,
					"entity_id":   c.EntityID,
				}).WithError(err).Error("Auto-escalation failed")
				continue
			}
			if id == "" {
				report.Skipped++
				continue
			}
			report.Escalated++
			report.Created = append(report.Created, id)
		}
	}

	report.FinishedAt = s.clock()
	entry := log.WithFields(logrus.Fields{
		"candidates": report.Candidates,
		"escalated":  report.Escalated,
		"skipped":    report.Skipped,
		"failed":     report.Failed(),
	})
	if report.Failed() > 0 {
		entry.Warn("SLA sweep completed with failures")
	} else {
		entry.Info("SLA sweep completed")
	}
	return report
}

// escalate raises one escalation for a breached candidate and writes its audit
// entry. Returns an empty ID when the candidate was skipped.
func (s *SLAMonitorServiceImpl) escalate(ctx context.Context, class escalation.EntityClass, c *secondary.CandidateRecord, threshold time.Duration, now time.Time) (string, error) {
	entityType := escalation.EntityType(c.EntityType)
	if entityType == "" {
		entityType = class.EntityType
	}

	var pendingID string
	if s.dedupPending {
		existing, err := s.escalationRepo.FindPendingByEntity(ctx, string(entityType), c.EntityID)
		if err != nil {
			return "", fmt.Errorf("%w: check pending escalation: %w", primary.ErrCollaborator, err)
		}
		if existing != nil {
			pendingID = existing.ID
		}
	}

	guard := escalation.CanAutoEscalate(escalation.AutoEscalateContext{
		EntityType:          entityType,
		EntityID:            c.EntityID,
		PendingEscalationID: pendingID,
		DedupPending:        s.dedupPending,
	})
	if !guard.Allowed {
		if pendingID != "" && entityType.Valid() {
			s.logger.WithFields(logrus.Fields{
				"entity_type": entityType,
				"entity_id":   c.EntityID,
			}).Debug(guard.Reason)
			return "", nil
		}
		return "", fmt.Errorf("%w: %s", primary.ErrValidation, guard.Reason)
	}

	record := &secondary.EscalationRecord{
		EntityType:  string(entityType),
		EntityID:    c.EntityID,
		EscalatedBy: escalation.SystemActor,
		EscalatedTo: s.targetRole,
		Reason: escalation.AutoEscalateReason(escalation.Candidate{
			EntityType: entityType,
			EntityID:   c.EntityID,
			CreatedAt:  c.CreatedAt,
			State:      c.State,
		}, threshold, now),
		Status: string(escalation.InitialStatus()),
	}
	if err := s.escalationRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("%w: create escalation: %w", primary.ErrCollaborator, err)
	}
	id := record.ID

	entry := &secondary.ActivityLogRecord{
		ID:         uuid.NewString(),
		ActorID:    escalation.SystemActor,
		Action:     escalation.AutoEscalateAction(entityType, s.targetRole),
		EntityType: string(entityType),
		EntityID:   c.EntityID,
		Timestamp:  now.UTC().Format(time.RFC3339),
	}
	if err := s.activityRepo.Append(ctx, entry); err != nil {
		return "", fmt.Errorf("%w: escalation %s created but activity log append failed: %w", primary.ErrCollaborator, id, err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyEscalation(ctx, record); err != nil {
			s.logger.WithField("escalation_id", id).WithError(err).Warn("Escalation notification failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"escalation_id": id,
		"entity_type":   entityType,
		"entity_id":     c.EntityID,
		"escalated_to":  s.targetRole,
	}).Info("Escalation raised")
	return id, nil
}

// ResolveEscalation resolves an escalation. Re-resolving overwrites the
// resolution fields unless strict resolve is configured.
func (s *SLAMonitorServiceImpl) ResolveEscalation(ctx context.Context, req primary.ResolveEscalationRequest) (*primary.Escalation, error) {
	record, err := s.escalationRepo.GetByID(ctx, req.EscalationID)
	if err != nil {
		return nil, s.mapRepoError(req.EscalationID, err)
	}

	guard := escalation.CanResolve(escalation.ResolveContext{
		EscalationID:  req.EscalationID,
		CurrentStatus: escalation.Status(record.Status),
		ResolvedBy:    req.ResolvedBy,
		Resolution:    req.Resolution,
		Strict:        s.strictResolve,
	})
	if !guard.Allowed {
		return nil, fmt.Errorf("%w: %s", primary.ErrValidation, guard.Reason)
	}

	res := escalation.ApplyResolution(req.ResolvedBy, req.Resolution, s.clock())
	if err := s.escalationRepo.Resolve(ctx, req.EscalationID, res.ResolvedBy, res.Resolution, res.ResolvedAt); err != nil {
		return nil, s.mapRepoError(req.EscalationID, err)
	}

	actor := ctxutil.ActorFromContext(ctx)
	if actor == "" {
		actor = res.ResolvedBy
	}
	meta := ctxutil.RequestMetaFromContext(ctx)
	if err := s.activityRepo.Append(ctx, &secondary.ActivityLogRecord{
		ID:         uuid.NewString(),
		ActorID:    actor,
		Action:     ActionResolveEscalation,
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Timestamp:  res.ResolvedAt.Format(time.RFC3339),
	}); err != nil {
		s.logger.WithField("escalation_id", req.EscalationID).WithError(err).Error("Failed to append resolve activity log")
	}

	updated, err := s.escalationRepo.GetByID(ctx, req.EscalationID)
	if err != nil {
		return nil, s.mapRepoError(req.EscalationID, err)
	}
	return s.recordToEscalation(updated), nil
}

// GetEscalationHistory returns all escalations for an entity, newest first.
// This is a non-critical read: store failures yield an empty result.
func (s *SLAMonitorServiceImpl) GetEscalationHistory(ctx context.Context, entityType, entityID string) []*primary.Escalation {
	records, err := s.escalationRepo.List(ctx, secondary.EscalationFilters{
		EntityType: entityType,
		EntityID:   entityID,
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"entity_type": entityType,
			"entity_id":   entityID,
		}).WithError(err).Error("Failed to load escalation history")
		return []*primary.Escalation{}
	}

	history := make([]*primary.Escalation, len(records))
	for i, r := range records {
		history[i] = s.recordToEscalation(r)
	}
	return history
}

// GetEscalation retrieves an escalation by ID.
func (s *SLAMonitorServiceImpl) GetEscalation(ctx context.Context, escalationID string) (*primary.Escalation, error) {
	record, err := s.escalationRepo.GetByID(ctx, escalationID)
	if err != nil {
		return nil, s.mapRepoError(escalationID, err)
	}
	return s.recordToEscalation(record), nil
}

// ListEscalations lists escalations with optional filters.
func (s *SLAMonitorServiceImpl) ListEscalations(ctx context.Context, filters primary.EscalationFilters) ([]*primary.Escalation, error) {
	records, err := s.escalationRepo.List(ctx, secondary.EscalationFilters{
		EntityType:  filters.EntityType,
		EntityID:    filters.EntityID,
		Status:      filters.Status,
		EscalatedTo: filters.EscalatedTo,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list escalations: %w", primary.ErrCollaborator, err)
	}

	escalations := make([]*primary.Escalation, len(records))
	for i, r := range records {
		escalations[i] = s.recordToEscalation(r)
	}
	return escalations, nil
}

// Helper methods

func (s *SLAMonitorServiceImpl) mapRepoError(escalationID string, err error) error {
	if errors.Is(err, secondary.ErrNotFound) {
		return fmt.Errorf("%w: escalation %s", primary.ErrNotFound, escalationID)
	}
	return fmt.Errorf("%w: %w", primary.ErrCollaborator, err)
}

func (s *SLAMonitorServiceImpl) recordToEscalation(r *secondary.EscalationRecord) *primary.Escalation {
	return &primary.Escalation{
		ID:          r.ID,
		EntityType:  r.EntityType,
		EntityID:    r.EntityID,
		EscalatedBy: r.EscalatedBy,
		EscalatedTo: r.EscalatedTo,
		Reason:      r.Reason,
		Status:      r.Status,
		ResolvedBy:  r.ResolvedBy,
		Resolution:  r.Resolution,
		CreatedAt:   r.CreatedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

// Ensure SLAMonitorServiceImpl implements the interface
var _ primary.SLAMonitorService = (*SLAMonitorServiceImpl)(nil)
