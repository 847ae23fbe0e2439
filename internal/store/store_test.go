package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/legal_queries/backend/internal/models"
)

func seeded() *Store {
	s := New([]models.Lawyer{
		{ID: "a", Name: "Ana", Email: "a@x.com", Typologies: []string{"Todo"}, WorkPercentage: 100},
		{ID: "b", Name: "Bea", Email: "b@x.com", Typologies: []string{"Avales nacionales"}, WorkPercentage: 50},
	})
	queries := []models.Query{
		{ID: "1", RITM: "RITM001", Typology: "Avales nacionales", IsUrgent: true, AssignedLawyer: "Ana", AssignedLawyerEmail: "a@x.com", Status: models.StatusPending},
		{ID: "2", RITM: "RITM002", Typology: "Productos de activo", AssignedLawyer: "Bea", AssignedLawyerEmail: "b@x.com", Status: models.StatusCompleted},
		{ID: "3", RITM: "RITM003", Typology: "Certificados", Status: models.StatusPending},
	}
	_, lawyers := s.Snapshot()
	s.SaveBatch(queries, lawyers)
	return s
}

func ids(qs []models.Query) []string {
	out := []string{}
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestListQueriesFilters(t *testing.T) {
	s := seeded()

	require.Equal(t, []string{"1", "2", "3"}, ids(s.ListQueries(QueryFilter{})))
	require.Equal(t, []string{"2"}, ids(s.ListQueries(QueryFilter{Search: "activo"})))
	require.Equal(t, []string{"1"}, ids(s.ListQueries(QueryFilter{Search: "ana"})))
	require.Equal(t, []string{"3"}, ids(s.ListQueries(QueryFilter{Search: "ritm003"})))
	require.Equal(t, []string{"2"}, ids(s.ListQueries(QueryFilter{Status: models.StatusCompleted})))
	require.Equal(t, []string{"1"}, ids(s.ListQueries(QueryFilter{Urgency: "urgent"})))
	require.Equal(t, []string{"2", "3"}, ids(s.ListQueries(QueryFilter{Urgency: "normal"})))
	require.Equal(t, []string{"2"}, ids(s.ListQueries(QueryFilter{LawyerEmail: "B@x.com"})))
	require.Equal(t, []string{"3"}, ids(s.ListQueries(QueryFilter{Unassigned: true})))
}

func TestUpdateQueryStatus(t *testing.T) {
	s := seeded()
	q, err := s.UpdateQueryStatus("3", models.StatusElevated)
	require.NoError(t, err)
	require.Equal(t, models.StatusElevated, q.Status)

	got, err := s.GetQuery("3")
	require.NoError(t, err)
	require.Equal(t, models.StatusElevated, got.Status)

	_, err = s.UpdateQueryStatus("missing", models.StatusElevated)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateLawyer(t *testing.T) {
	s := seeded()
	wp := 0
	urgent := true
	l, err := s.UpdateLawyer("b", LawyerUpdate{WorkPercentage: &wp, CanHandleUrgent: &urgent})
	require.NoError(t, err)
	require.Equal(t, 0, l.WorkPercentage)
	require.True(t, l.CanHandleUrgent)
	require.Equal(t, []string{"Avales nacionales"}, l.Typologies)

	l, err = s.UpdateLawyer("b", LawyerUpdate{Typologies: []string{"Todo"}})
	require.NoError(t, err)
	require.Equal(t, []string{"Todo"}, l.Typologies)
	require.Equal(t, 0, l.WorkPercentage)

	_, err = s.UpdateLawyer("zz", LawyerUpdate{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReadsAreCopies(t *testing.T) {
	s := seeded()
	lawyers := s.ListLawyers()
	lawyers[0].Typologies[0] = "mutated"
	lawyers[0].WorkPercentage = 1

	l, err := s.GetLawyer("a")
	require.NoError(t, err)
	require.Equal(t, []string{"Todo"}, l.Typologies)
	require.Equal(t, 100, l.WorkPercentage)
}

func TestLatestRun(t *testing.T) {
	s := New(nil)
	_, err := s.LatestRun()
	require.ErrorIs(t, err, ErrNotFound)

	s.SaveRun(models.Run{ID: "r1", Status: "SUCCESS"})
	s.SaveRun(models.Run{ID: "r2", Status: "SUCCESS"})
	run, err := s.LatestRun()
	require.NoError(t, err)
	require.Equal(t, "r2", run.ID)
}
