package service

import (
	"sort"
	"strings"

	"github.com/legal_queries/backend/internal/models"
)

// UniversalTypology on a lawyer accepts queries of every category.
const UniversalTypology = "Todo"

const (
	ReasonEligible          = "ELIGIBLE"
	ReasonUnavailable       = "LAWYER_UNAVAILABLE"
	ReasonUrgentNotAllowed  = "URGENT_NOT_ALLOWED"
	ReasonTypologyMismatch  = "TYPOLOGY_MISMATCH"
	ReasonNoEligibleLawyers = "NO_ELIGIBLE_LAWYERS"
)

// Outcomes of a single balancer decision.
const (
	OutcomeSticky     = "STICKY"
	OutcomeRouted     = "ROUTED"
	OutcomeUnassigned = "UNASSIGNED"
)

var stickyKeywords = []string{"respuesta", "discrepancia"}

type Eligibility struct {
	Eligible   bool
	ReasonCode string
	ReasonText string
}

// EvaluateEligibility applies the rules in order and stops at the first one that fails.
func EvaluateEligibility(l models.Lawyer, q models.Query) Eligibility {
	if l.WorkPercentage == 0 {
		return Eligibility{ReasonCode: ReasonUnavailable, ReasonText: "Lawyer has no work capacity"}
	}
	if q.IsUrgent && !l.CanHandleUrgent {
		return Eligibility{ReasonCode: ReasonUrgentNotAllowed, ReasonText: "Lawyer cannot take urgent queries"}
	}
	if hasTypology(l.Typologies, UniversalTypology) {
		return Eligibility{Eligible: true, ReasonCode: ReasonEligible}
	}
	for _, t := range l.Typologies {
		if TypologyMatches(t, q.Typology) {
			return Eligibility{Eligible: true, ReasonCode: ReasonEligible}
		}
	}
	return Eligibility{ReasonCode: ReasonTypologyMismatch, ReasonText: "No typology of the lawyer matches the query"}
}

func IsEligible(l models.Lawyer, q models.Query) bool {
	return EvaluateEligibility(l, q).Eligible
}

// TypologyMatches is a case-sensitive containment test in both directions.
// An empty query typology is contained in every label and therefore matches.
func TypologyMatches(lawyerTypology, queryTypology string) bool {
	return strings.Contains(queryTypology, lawyerTypology) || strings.Contains(lawyerTypology, queryTypology)
}

func FilterEligibleLawyers(lawyers []models.Lawyer, q models.Query) []models.Lawyer {
	return filterLawyers(lawyers, func(l models.Lawyer) bool {
		return IsEligible(l, q)
	})
}

// ResolveLawyer finds the roster entry a query is already bound to. Only non-empty
// references are compared, so a blank email never matches a blank roster email.
func ResolveLawyer(lawyers []models.Lawyer, q models.Query) (int, bool) {
	for i, l := range lawyers {
		if q.AssignedLawyer != "" && (q.AssignedLawyer == l.ExternalName || q.AssignedLawyer == l.Name) {
			return i, true
		}
		if q.AssignedLawyerEmail != "" && q.AssignedLawyerEmail == l.Email {
			return i, true
		}
	}
	return -1, false
}

// IsFollowUp reports whether the last action marks the query as a response or a
// discrepancy that must stay with its current lawyer.
func IsFollowUp(lastAction string) bool {
	action := strings.ToLower(lastAction)
	for _, kw := range stickyKeywords {
		if strings.Contains(action, kw) {
			return true
		}
	}
	return false
}

// LoadRatio is the running count divided by the capacity weight. Callers only ask
// for lawyers with a positive work percentage.
func LoadRatio(count int, workPercentage int) float64 {
	return float64(count) / float64(workPercentage)
}

type Decision struct {
	QueryID  string
	RITM     string
	Outcome  string
	LawyerID string
	Ratio    float64
}

type BatchResult struct {
	Queries   []models.Query
	Decisions []Decision
	// Loads holds the running counters at the end of the batch, keyed by lawyer id.
	Loads map[string]int
}

func AssignQueries(queries []models.Query, lawyers []models.Lawyer) []models.Query {
	return BalanceQueries(queries, lawyers).Queries
}

// BalanceQueries walks the batch in order. Sticky follow-ups stay with their lawyer,
// every other query goes to the eligible lawyer with the lowest load ratio. The
// roster is never mutated: running counts live in a slice indexed by roster position.
func BalanceQueries(queries []models.Query, lawyers []models.Lawyer) BatchResult {
	loads := make([]int, len(lawyers))
	for i, l := range lawyers {
		loads[i] = l.CurrentAssignments
	}

	out := make([]models.Query, 0, len(queries))
	decisions := make([]Decision, 0, len(queries))

	for _, q := range queries {
		if q.Assigned() {
			if idx, ok := ResolveLawyer(lawyers, q); ok && lawyers[idx].WorkPercentage > 0 && IsFollowUp(q.LastAction) {
				// Sticky follow-ups intentionally leave the running load untouched.
				kept := lawyers[idx]
				q.AssignedLawyer = kept.Name
				q.AssignedLawyerEmail = kept.Email
				out = append(out, q)
				decisions = append(decisions, Decision{
					QueryID:  q.ID,
					RITM:     q.RITM,
					Outcome:  OutcomeSticky,
					LawyerID: kept.ID,
					Ratio:    LoadRatio(loads[idx], kept.WorkPercentage),
				})
				continue
			}
		}

		candidates := eligibleIndexes(lawyers, q)
		if len(candidates) == 0 {
			out = append(out, q)
			decisions = append(decisions, Decision{QueryID: q.ID, RITM: q.RITM, Outcome: OutcomeUnassigned})
			continue
		}

		picked, ratio := PickLawyer(lawyers, loads, candidates)
		loads[picked]++

		selected := lawyers[picked]
		q.AssignedLawyer = selected.Name
		q.AssignedLawyerEmail = selected.Email
		q.Status = models.StatusPending
		out = append(out, q)
		decisions = append(decisions, Decision{
			QueryID:  q.ID,
			RITM:     q.RITM,
			Outcome:  OutcomeRouted,
			LawyerID: selected.ID,
			Ratio:    ratio,
		})
	}

	loadMap := make(map[string]int, len(lawyers))
	for i, l := range lawyers {
		loadMap[l.ID] = loads[i]
	}
	return BatchResult{Queries: out, Decisions: decisions, Loads: loadMap}
}

// PickLawyer sorts the candidate roster positions by load ratio, keeping roster order
// among ties, and returns the first one with its ratio before the commit.
func PickLawyer(lawyers []models.Lawyer, loads []int, candidates []int) (int, float64) {
	ordered := append([]int(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		return LoadRatio(loads[a], lawyers[a].WorkPercentage) < LoadRatio(loads[b], lawyers[b].WorkPercentage)
	})
	first := ordered[0]
	return first, LoadRatio(loads[first], lawyers[first].WorkPercentage)
}

// RecomputeLoads returns a copy of the roster with CurrentAssignments set to the
// number of queries bound to each lawyer by email.
func RecomputeLoads(queries []models.Query, lawyers []models.Lawyer) []models.Lawyer {
	counts := map[string]int{}
	for _, q := range queries {
		if q.AssignedLawyerEmail != "" {
			counts[q.AssignedLawyerEmail]++
		}
	}
	out := make([]models.Lawyer, 0, len(lawyers))
	for _, l := range lawyers {
		l.Typologies = append([]string(nil), l.Typologies...)
		l.CurrentAssignments = counts[l.Email]
		out = append(out, l)
	}
	return out
}

func eligibleIndexes(lawyers []models.Lawyer, q models.Query) []int {
	var out []int
	for i, l := range lawyers {
		if IsEligible(l, q) {
			out = append(out, i)
		}
	}
	return out
}

func hasTypology(typologies []string, target string) bool {
	for _, t := range typologies {
		if t == target {
			return true
		}
	}
	return false
}

func filterLawyers(lawyers []models.Lawyer, keep func(models.Lawyer) bool) []models.Lawyer {
	out := make([]models.Lawyer, 0, len(lawyers))
	for _, l := range lawyers {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
