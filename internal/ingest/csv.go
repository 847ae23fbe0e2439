package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/legal_queries/backend/internal/models"
)

var statusLabels = map[string]models.QueryStatus{
	"pendiente":              models.StatusPending,
	"en proceso":             models.StatusInProcess,
	"finalizada":             models.StatusCompleted,
	"reclasificada":          models.StatusReclassified,
	"elevada":                models.StatusElevated,
	"elevada cops":           models.StatusElevated,
	"info. solicitada":       models.StatusInfoRequested,
	"info solicitada":        models.StatusInfoRequested,
	"informacion solicitada": models.StatusInfoRequested,
}

// ParseQueriesCSV reads a query export. Rows without a RITM are reported and skipped;
// every other gap is filled with a default so one bad cell never drops the batch.
func ParseQueriesCSV(r io.Reader, now time.Time) ([]models.Query, []string) {
	br := bufio.NewReader(r)
	reader := csv.NewReader(br)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comma = detectComma(br)

	headers, err := reader.Read()
	if err != nil {
		return nil, []string{"failed to read header"}
	}
	index := headerIndex(headers)
	var errors []string
	var out []models.Query

	line := 1
	for {
		rec, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			errors = append(errors, err.Error())
			continue
		}
		if blankRecord(rec) {
			continue
		}

		id := getFieldAny(rec, index, "id", "query_id", "sys_id")
		ritm := getFieldAny(rec, index, "ritm", "número", "numero", "number", "ticket")
		typology := getFieldAny(rec, index, "typology", "tipología", "tipologia", "category", "categoría")
		entryRaw := getFieldAny(rec, index, "entry_date", "fecha entrada", "fecha de entrada", "abierto", "opened", "created")
		deadlineRaw := getFieldAny(rec, index, "deadline", "fecha vencimiento", "vencimiento", "plazo", "due date")
		urgentRaw := getFieldAny(rec, index, "is_urgent", "urgent", "urgente", "prioridad", "priority")
		lawyerName := getFieldAny(rec, index, "assigned_lawyer", "letrado", "asignado a", "assigned to", "assigned_to")
		lawyerEmail := getFieldAny(rec, index, "assigned_lawyer_email", "email letrado", "email", "correo")
		lastAction := getFieldAny(rec, index, "last_action", "última acción", "ultima accion", "última actuación", "acción")
		office := getFieldAny(rec, index, "office_name", "oficina", "office")
		statusRaw := getFieldAny(rec, index, "status", "estado")

		if ritm == "" {
			errors = append(errors, fmt.Sprintf("line %d: ritm required", line))
			continue
		}
		if id == "" {
			id = uuid.NewString()
		}

		entryDate := ParseSheetDate(entryRaw, now)
		deadline := ParseSheetDate(deadlineRaw, now)

		out = append(out, models.Query{
			ID:                  id,
			RITM:                ritm,
			Typology:            typology,
			EntryDate:           entryDate,
			Deadline:            deadline,
			IsUrgent:            ParseUrgent(urgentRaw),
			AssignedLawyer:      lawyerName,
			AssignedLawyerEmail: lawyerEmail,
			Status:              ParseStatus(statusRaw),
			LastAction:          lastAction,
			OfficeName:          office,
		})
	}
	return out, errors
}

// ParseStatus accepts canonical values and the Spanish labels; anything else is pending.
func ParseStatus(raw string) models.QueryStatus {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s := models.QueryStatus(v); s.Valid() {
		return s
	}
	if s, ok := statusLabels[v]; ok {
		return s
	}
	return models.StatusPending
}

func ParseUrgent(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "si", "sí", "s", "yes", "y", "true", "1", "x", "urgente", "urgent", "alta", "high":
		return true
	default:
		return false
	}
}

func ValidateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}

// detectComma picks ';' for exports from Spanish-locale spreadsheets.
func detectComma(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}
