package store

import (
	"errors"
	"strings"
	"sync"

	"github.com/legal_queries/backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// Store keeps the working batch, the roster and the latest run in memory. Reads
// return copies so callers can never alias the stored slices.
type Store struct {
	mu      sync.RWMutex
	queries []models.Query
	lawyers []models.Lawyer
	latest  *models.Run

	// runMu serializes engine runs and the edits a run would otherwise overwrite.
	// Lock order is runMu then mu.
	runMu sync.Mutex
}

type QueryFilter struct {
	Search      string
	Status      models.QueryStatus
	Urgency     string
	LawyerEmail string
	Unassigned  bool
}

type LawyerUpdate struct {
	WorkPercentage  *int
	CanHandleUrgent *bool
	Typologies      []string
}

func New(lawyers []models.Lawyer) *Store {
	return &Store{lawyers: cloneLawyers(lawyers)}
}

// Exclusive runs fn while no other exclusive section is running.
func (s *Store) Exclusive(fn func() error) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return fn()
}

func (s *Store) Snapshot() ([]models.Query, []models.Lawyer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Query(nil), s.queries...), cloneLawyers(s.lawyers)
}

// SaveBatch replaces the working batch and the roster load counters.
func (s *Store) SaveBatch(queries []models.Query, lawyers []models.Lawyer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append([]models.Query(nil), queries...)
	s.lawyers = cloneLawyers(lawyers)
}

func (s *Store) ListQueries(f QueryFilter) []models.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.Query{}
	for _, q := range s.queries {
		if search != "" &&
			!strings.Contains(strings.ToLower(q.RITM), search) &&
			!strings.Contains(strings.ToLower(q.Typology), search) &&
			!strings.Contains(strings.ToLower(q.AssignedLawyer), search) {
			continue
		}
		if f.Status != "" && q.Status != f.Status {
			continue
		}
		switch f.Urgency {
		case "urgent":
			if !q.IsUrgent {
				continue
			}
		case "normal":
			if q.IsUrgent {
				continue
			}
		}
		if f.LawyerEmail != "" && !strings.EqualFold(q.AssignedLawyerEmail, f.LawyerEmail) {
			continue
		}
		if f.Unassigned && q.Assigned() {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (s *Store) GetQuery(id string) (models.Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.queries {
		if q.ID == id {
			return q, nil
		}
	}
	return models.Query{}, ErrNotFound
}

// UpdateQueryStatus waits for a running batch to be saved before applying the edit.
func (s *Store) UpdateQueryStatus(id string, status models.QueryStatus) (models.Query, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.queries {
		if s.queries[i].ID == id {
			s.queries[i].Status = status
			return s.queries[i], nil
		}
	}
	return models.Query{}, ErrNotFound
}

func (s *Store) ListLawyers() []models.Lawyer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLawyers(s.lawyers)
}

func (s *Store) GetLawyer(id string) (models.Lawyer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lawyers {
		if l.ID == id {
			l.Typologies = append([]string(nil), l.Typologies...)
			return l, nil
		}
	}
	return models.Lawyer{}, ErrNotFound
}

// UpdateLawyer waits for a running batch to be saved before applying the edit.
func (s *Store) UpdateLawyer(id string, u LawyerUpdate) (models.Lawyer, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lawyers {
		if s.lawyers[i].ID != id {
			continue
		}
		if u.WorkPercentage != nil {
			s.lawyers[i].WorkPercentage = *u.WorkPercentage
		}
		if u.CanHandleUrgent != nil {
			s.lawyers[i].CanHandleUrgent = *u.CanHandleUrgent
		}
		if u.Typologies != nil {
			s.lawyers[i].Typologies = append([]string(nil), u.Typologies...)
		}
		l := s.lawyers[i]
		l.Typologies = append([]string(nil), l.Typologies...)
		return l, nil
	}
	return models.Lawyer{}, ErrNotFound
}

func (s *Store) SaveRun(run models.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &run
}

func (s *Store) LatestRun() (models.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return models.Run{}, ErrNotFound
	}
	return *s.latest, nil
}

func cloneLawyers(in []models.Lawyer) []models.Lawyer {
	out := make([]models.Lawyer, 0, len(in))
	for _, l := range in {
		l.Typologies = append([]string(nil), l.Typologies...)
		out = append(out, l)
	}
	return out
}
