package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/legal_queries/backend/internal/models"
	"github.com/legal_queries/backend/internal/notify"
	"github.com/legal_queries/backend/internal/store"
)

const (
	TriggerLoad     = "LOAD"
	TriggerReassign = "REASSIGN"

	RunSuccess = "SUCCESS"
)

var ErrNoQueries = errors.New("no queries loaded")

// AssignmentService runs the engine over the stored batch and keeps the roster load
// counters in sync with the result. Runs are serialized through the store.
type AssignmentService struct {
	Store            *store.Store
	Notifier         notify.Notifier
	AutoNotifyUrgent bool
	Logger           zerolog.Logger
	Now              func() time.Time
}

type AssignmentLine struct {
	QueryID string `json:"query_id"`
	RITM    string `json:"ritm"`
	Lawyer  string `json:"lawyer,omitempty"`
	Outcome string `json:"outcome"`
}

type NotificationOutcome struct {
	LawyerEmail string `json:"lawyer_email"`
	Queries     int    `json:"queries"`
	Sent        bool   `json:"sent"`
	Error       string `json:"error,omitempty"`
}

type RunSummary struct {
	RunID         string                `json:"run_id"`
	Trigger       string                `json:"trigger"`
	Events        []map[string]any      `json:"events"`
	Counts        map[string]any        `json:"counts"`
	Assignments   []AssignmentLine      `json:"assignments"`
	Loads         map[string]int        `json:"loads"`
	Notifications []NotificationOutcome `json:"notifications,omitempty"`
}

// Load replaces the working batch with freshly ingested queries and assigns them.
func (s *AssignmentService) Load(ctx context.Context, queries []models.Query) (RunSummary, error) {
	var (
		summary RunSummary
		pending []notify.Request
	)
	err := s.Store.Exclusive(func() error {
		_, lawyers := s.Store.Snapshot()
		summary = s.run(TriggerLoad, queries, lawyers)
		pending = s.urgentRequests(summary)
		return nil
	})
	if err != nil {
		return RunSummary{}, err
	}
	s.sendNotifications(ctx, &summary, pending)
	return summary, nil
}

// Reassign re-runs the engine over every stored query, including assigned ones.
func (s *AssignmentService) Reassign(ctx context.Context) (RunSummary, error) {
	var (
		summary RunSummary
		pending []notify.Request
	)
	err := s.Store.Exclusive(func() error {
		queries, lawyers := s.Store.Snapshot()
		if len(queries) == 0 {
			return ErrNoQueries
		}
		summary = s.run(TriggerReassign, queries, lawyers)
		pending = s.urgentRequests(summary)
		return nil
	})
	if err != nil {
		return RunSummary{}, err
	}
	s.sendNotifications(ctx, &summary, pending)
	return summary, nil
}

func (s *AssignmentService) run(trigger string, queries []models.Query, lawyers []models.Lawyer) RunSummary {
	start := s.now()
	runID := uuid.NewString()

	summary := RunSummary{
		RunID:   runID,
		Trigger: trigger,
		Counts:  map[string]any{},
	}
	summary.Events = append(summary.Events, map[string]any{
		"type":    "batch_loaded",
		"message": "Queries ready for assignment",
		"count":   len(queries),
		"lawyers": len(lawyers),
		"time":    start.UTC(),
	})

	res := BalanceQueries(queries, lawyers)
	updated := RecomputeLoads(res.Queries, lawyers)
	s.Store.SaveBatch(res.Queries, updated)

	var (
		stickyCount     int
		routedCount     int
		unassignedCount int
		urgentRouted    int
		unassignedByTyp = map[string]int{}
	)
	names := make(map[string]string, len(lawyers))
	for _, l := range lawyers {
		names[l.ID] = l.Name
	}
	for i, d := range res.Decisions {
		line := AssignmentLine{QueryID: d.QueryID, RITM: d.RITM, Outcome: d.Outcome, Lawyer: names[d.LawyerID]}
		switch d.Outcome {
		case OutcomeSticky:
			stickyCount++
		case OutcomeRouted:
			routedCount++
			if res.Queries[i].IsUrgent {
				urgentRouted++
			}
		case OutcomeUnassigned:
			unassignedCount++
			unassignedByTyp[res.Queries[i].Typology]++
			s.Logger.Debug().Str("run_id", runID).Str("ritm", d.RITM).Str("typology", res.Queries[i].Typology).Msg("query left unassigned")
		}
		summary.Assignments = append(summary.Assignments, line)
	}

	summary.Loads = map[string]int{}
	for _, l := range updated {
		summary.Loads[l.ID] = l.CurrentAssignments
	}

	summary.Events = append(summary.Events, map[string]any{
		"type":       "assignment",
		"sticky":     stickyCount,
		"routed":     routedCount,
		"unassigned": unassignedCount,
		"time":       s.now().UTC(),
	})
	summary.Events = append(summary.Events, map[string]any{
		"type":       "loads_recomputed",
		"message":    "Lawyer load counters updated",
		"elapsed_ms": s.now().Sub(start).Milliseconds(),
		"time":       s.now().UTC(),
	})

	summary.Counts["queries_processed"] = len(queries)
	summary.Counts["sticky"] = stickyCount
	summary.Counts["routed"] = routedCount
	summary.Counts["urgent_routed"] = urgentRouted
	summary.Counts["unassigned"] = unassignedCount
	summary.Counts["unassigned_by_typology"] = unassignedByTyp

	s.Store.SaveRun(models.Run{
		ID:         runID,
		Trigger:    trigger,
		StartedAt:  start.UTC(),
		FinishedAt: s.now().UTC(),
		Status:     RunSuccess,
		Summary:    summary,
	})

	s.Logger.Info().
		Str("run_id", runID).
		Str("trigger", trigger).
		Int("queries", len(queries)).
		Int("sticky", stickyCount).
		Int("routed", routedCount).
		Int("unassigned", unassignedCount).
		Dur("elapsed", s.now().Sub(start)).
		Msg("assignment run finished")
	return summary
}

// urgentRequests builds one automatic notification per lawyer with urgent queries
// routed in this run. It must be called while the run still holds the store.
func (s *AssignmentService) urgentRequests(summary RunSummary) []notify.Request {
	if !s.AutoNotifyUrgent || s.Notifier == nil {
		return nil
	}
	routed := map[string]bool{}
	for _, a := range summary.Assignments {
		if a.Outcome == OutcomeRouted {
			routed[a.QueryID] = true
		}
	}
	queries, lawyers := s.Store.Snapshot()
	var out []notify.Request
	for _, l := range lawyers {
		req, err := notify.BuildRequestFiltered(l, queries, true, func(q models.Query) bool {
			return q.IsUrgent && routed[q.ID]
		})
		if err != nil {
			continue
		}
		out = append(out, req)
	}
	return out
}

// sendNotifications reports delivery failures in the summary only; assignments stay committed.
func (s *AssignmentService) sendNotifications(ctx context.Context, summary *RunSummary, reqs []notify.Request) {
	for _, req := range reqs {
		outcome := NotificationOutcome{LawyerEmail: req.LawyerEmail, Queries: len(req.Queries)}
		if _, err := s.Notifier.Notify(ctx, req); err != nil {
			s.Logger.Warn().Err(err).Str("lawyer_email", req.LawyerEmail).Msg("automatic notification failed")
			outcome.Error = err.Error()
		} else {
			outcome.Sent = true
		}
		summary.Notifications = append(summary.Notifications, outcome)
	}
}

// NotifyLawyer sends a manual notification with every query currently bound to the lawyer.
func (s *AssignmentService) NotifyLawyer(ctx context.Context, lawyerID string) (notify.Result, error) {
	l, err := s.Store.GetLawyer(lawyerID)
	if err != nil {
		return notify.Result{}, err
	}
	queries, _ := s.Store.Snapshot()
	req, err := notify.BuildRequest(l, queries, false)
	if err != nil {
		return notify.Result{}, err
	}
	return s.Notifier.Notify(ctx, req)
}

type LawyerVerdict struct {
	LawyerID   string  `json:"lawyer_id"`
	Name       string  `json:"name"`
	Eligible   bool    `json:"eligible"`
	ReasonCode string  `json:"reason_code"`
	ReasonText string  `json:"reason_text,omitempty"`
	Load       int     `json:"load"`
	Ratio      float64 `json:"ratio"`
}

type EligibilityReport struct {
	QueryID    string          `json:"query_id"`
	RITM       string          `json:"ritm"`
	FollowUp   bool            `json:"follow_up"`
	StickyTo   string          `json:"sticky_to,omitempty"`
	Verdicts   []LawyerVerdict `json:"verdicts"`
	Eligible   []string        `json:"eligible"`
	ReasonCode string          `json:"reason_code,omitempty"`
}

// ExplainEligibility evaluates one stored query against the current roster.
func (s *AssignmentService) ExplainEligibility(queryID string) (EligibilityReport, error) {
	q, err := s.Store.GetQuery(queryID)
	if err != nil {
		return EligibilityReport{}, err
	}
	return Explain(q, s.Store.ListLawyers()), nil
}

func Explain(q models.Query, lawyers []models.Lawyer) EligibilityReport {
	report := EligibilityReport{
		QueryID:  q.ID,
		RITM:     q.RITM,
		FollowUp: IsFollowUp(q.LastAction),
		Eligible: []string{},
	}
	if q.Assigned() && report.FollowUp {
		if idx, ok := ResolveLawyer(lawyers, q); ok && lawyers[idx].WorkPercentage > 0 {
			report.StickyTo = lawyers[idx].ID
		}
	}
	for _, l := range lawyers {
		e := EvaluateEligibility(l, q)
		v := LawyerVerdict{
			LawyerID:   l.ID,
			Name:       l.Name,
			Eligible:   e.Eligible,
			ReasonCode: e.ReasonCode,
			ReasonText: e.ReasonText,
			Load:       l.CurrentAssignments,
		}
		if l.WorkPercentage > 0 {
			v.Ratio = LoadRatio(l.CurrentAssignments, l.WorkPercentage)
		}
		if e.Eligible {
			report.Eligible = append(report.Eligible, l.ID)
		}
		report.Verdicts = append(report.Verdicts, v)
	}
	if len(report.Eligible) == 0 {
		report.ReasonCode = ReasonNoEligibleLawyers
	}
	return report
}

func (s *AssignmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
