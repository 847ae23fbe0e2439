package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legal_queries/backend/internal/models"
)

func TestParseQueriesCSV_SpanishExport(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	content := "\ufeffNúmero;Tipología;Fecha entrada;Plazo;Urgente;Letrado;Última acción;Oficina;Estado\n" +
		"RITM0001;Productos de activo;45658;04/01/2025;Sí;ROCIO GAITAN JURADO;Respuesta cliente;Oficina 12;En Proceso\n" +
		"RITM0002;Avales nacionales;no es fecha;;no;;;;\n" +
		";Avales nacionales;;;;;;;\n" +
		";;;;;;;;\n"

	queries, errs := ParseQueriesCSV(strings.NewReader(content), now)
	require.Equal(t, []string{"line 4: ritm required"}, errs)
	require.Len(t, queries, 2)

	first := queries[0]
	require.NotEmpty(t, first.ID)
	require.Equal(t, "RITM0001", first.RITM)
	require.Equal(t, "Productos de activo", first.Typology)
	require.True(t, first.EntryDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, first.Deadline.Equal(time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)))
	require.True(t, first.IsUrgent)
	require.Equal(t, "ROCIO GAITAN JURADO", first.AssignedLawyer)
	require.Equal(t, "Respuesta cliente", first.LastAction)
	require.Equal(t, "Oficina 12", first.OfficeName)
	require.Equal(t, models.StatusInProcess, first.Status)

	second := queries[1]
	require.True(t, second.EntryDate.Equal(now))
	require.True(t, second.Deadline.Equal(now))
	require.False(t, second.IsUrgent)
	require.False(t, second.Assigned())
	require.Equal(t, models.StatusPending, second.Status)
	require.NotEqual(t, first.ID, second.ID)
}

func TestParseQueriesCSV_CommaExportKeepsIDs(t *testing.T) {
	content := "id,ritm,typology,is_urgent,assigned_lawyer_email,status\n" +
		"q-1,RITM9,\"Productos de pasivo, recibos, cheques y pagarés\",true,apino@ramoncajal.com,completed\n"

	queries, errs := ParseQueriesCSV(strings.NewReader(content), time.Now())
	require.Empty(t, errs)
	require.Len(t, queries, 1)
	require.Equal(t, "q-1", queries[0].ID)
	require.Equal(t, "Productos de pasivo, recibos, cheques y pagarés", queries[0].Typology)
	require.Equal(t, "apino@ramoncajal.com", queries[0].AssignedLawyerEmail)
	require.Equal(t, models.StatusCompleted, queries[0].Status)
}

func TestParseQueriesCSV_EmptyInput(t *testing.T) {
	queries, errs := ParseQueriesCSV(strings.NewReader(""), time.Now())
	require.Nil(t, queries)
	require.Equal(t, []string{"failed to read header"}, errs)
}

func TestParseStatus(t *testing.T) {
	require.Equal(t, models.StatusElevated, ParseStatus("Elevada COpS"))
	require.Equal(t, models.StatusInfoRequested, ParseStatus("Info. Solicitada"))
	require.Equal(t, models.StatusReclassified, ParseStatus("reclassified"))
	require.Equal(t, models.StatusPending, ParseStatus("???"))
}

func TestValidateExt(t *testing.T) {
	require.True(t, ValidateExt("consultas.CSV"))
	require.False(t, ValidateExt("consultas.xlsx"))
}
