package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/legal_queries/backend/internal/models"
)

var deadline = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

func sampleRequest(automatic bool) Request {
	return Request{
		LawyerName:  "María Oliver",
		LawyerEmail: "moliver@ramoncajal.com",
		IsAutomatic: automatic,
		Queries: []Item{
			{RITM: "RITM1", Typology: "Avales nacionales", IsUrgent: true, Deadline: deadline, Status: models.StatusPending},
			{RITM: "RITM2", Typology: "Productos de activo", Deadline: deadline, Status: models.StatusInProcess},
			{RITM: "RITM3", Typology: "<script>", Deadline: deadline, Status: models.StatusPending},
		},
	}
}

func TestBuildRequest(t *testing.T) {
	l := models.Lawyer{ID: "m", Name: "María Oliver", Email: "moliver@ramoncajal.com"}
	queries := []models.Query{
		{RITM: "A", AssignedLawyerEmail: "moliver@ramoncajal.com", IsUrgent: true},
		{RITM: "B", AssignedLawyerEmail: "other@ramoncajal.com"},
		{RITM: "C", AssignedLawyerEmail: "moliver@ramoncajal.com"},
		{RITM: "D"},
	}

	req, err := BuildRequest(l, queries, false)
	require.NoError(t, err)
	require.Equal(t, "María Oliver", req.LawyerName)
	require.Len(t, req.Queries, 2)
	require.Equal(t, "A", req.Queries[0].RITM)
	require.Equal(t, "C", req.Queries[1].RITM)
	require.Len(t, req.Urgent(), 1)
	require.Len(t, req.Normal(), 1)

	urgentOnly, err := BuildRequestFiltered(l, queries, true, func(q models.Query) bool { return q.IsUrgent })
	require.NoError(t, err)
	require.Len(t, urgentOnly.Queries, 1)
	require.True(t, urgentOnly.IsAutomatic)

	_, err = BuildRequest(models.Lawyer{Email: "nobody@ramoncajal.com"}, queries, false)
	require.ErrorIs(t, err, ErrNoQueries)
}

func TestRenderLawyerEmail(t *testing.T) {
	e, err := RenderLawyerEmail("from@x.com", sampleRequest(false))
	require.NoError(t, err)
	require.Equal(t, []string{"moliver@ramoncajal.com"}, e.To)
	require.Equal(t, "Nuevas Consultas Asignadas (3)", e.Subject)
	require.Contains(t, e.HTML, "Hola María Oliver")
	require.Contains(t, e.HTML, "Consultas Urgentes (1)")
	require.Contains(t, e.HTML, "Consultas Normales (2)")
	require.Contains(t, e.HTML, "09/06/2025")
	require.Contains(t, e.HTML, "En Proceso")
	require.NotContains(t, e.HTML, "<script>")
	require.NotContains(t, e.HTML, "automático - consultas urgentes")

	auto, err := RenderLawyerEmail("from@x.com", sampleRequest(true))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(auto.Subject, "⚠️ URGENTE - "))
	require.Contains(t, auto.HTML, "automático - consultas urgentes")
}

func TestRenderLawyerEmail_OnlyNormal(t *testing.T) {
	req := sampleRequest(false)
	req.Queries = req.Queries[1:]
	e, err := RenderLawyerEmail("from@x.com", req)
	require.NoError(t, err)
	require.NotContains(t, e.HTML, "Consultas Urgentes")
}

func TestRenderConfirmation(t *testing.T) {
	sentAt := time.Date(2025, 6, 1, 10, 11, 12, 0, time.UTC)
	e, err := RenderConfirmation("from@x.com", "sup@x.com", sampleRequest(true), sentAt)
	require.NoError(t, err)
	require.Equal(t, "Confirmación: Email enviado a María Oliver", e.Subject)
	require.Contains(t, e.HTML, "3 (1 urgentes)")
	require.Contains(t, e.HTML, "RITM2, RITM3")
	require.Contains(t, e.HTML, "Envío automático por consultas urgentes")
	require.Contains(t, e.HTML, "01/06/2025 10:11:12")
}

func TestDispatcherNotify(t *testing.T) {
	sender := &MockSender{}
	d := &Dispatcher{Sender: sender, Confirmations: []string{"rocio@example.com", "andrea@example.com"}, Logger: zerolog.Nop()}

	res, err := d.Notify(context.Background(), sampleRequest(false))
	require.NoError(t, err)
	require.Equal(t, "moliver@ramoncajal.com", res.LawyerEmail)
	require.Equal(t, []string{"rocio@example.com", "andrea@example.com"}, res.ConfirmationEmails)
	require.Equal(t, 1, res.Urgent)
	require.Equal(t, 3, res.Total)

	sent := sender.Sent()
	require.Len(t, sent, 3)
	require.Equal(t, DefaultFrom, sent[0].From)
	require.Equal(t, []string{"andrea@example.com"}, sent[2].To)
}

func TestDispatcherNotify_LawyerFailure(t *testing.T) {
	boom := errors.New("smtp down")
	sender := &MockSender{Err: boom}
	d := &Dispatcher{Sender: sender, Confirmations: []string{"sup@example.com"}, MaxRetries: 2, RetryDelay: time.Millisecond, Logger: zerolog.Nop()}

	_, err := d.Notify(context.Background(), sampleRequest(false))
	require.ErrorIs(t, err, boom)
	require.Empty(t, sender.Sent())
}

func TestDispatcherNotify_ConfirmationFailureIsNotFatal(t *testing.T) {
	sender := &MockSender{Err: errors.New("bounced"), FailTo: map[string]bool{"bad@example.com": true}}
	d := &Dispatcher{Sender: sender, Confirmations: []string{"bad@example.com", "good@example.com"}, Logger: zerolog.Nop()}

	res, err := d.Notify(context.Background(), sampleRequest(false))
	require.NoError(t, err)
	require.Equal(t, []string{"good@example.com"}, res.ConfirmationEmails)
}

func TestDispatcherNotify_Empty(t *testing.T) {
	d := &Dispatcher{Sender: &MockSender{}, Logger: zerolog.Nop()}
	_, err := d.Notify(context.Background(), Request{LawyerEmail: "x@example.com"})
	require.ErrorIs(t, err, ErrNoQueries)
}

func TestHTTPSender(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		var e Email
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		require.Equal(t, []string{"moliver@ramoncajal.com"}, e.To)
		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"em_1"}`))
	}))
	defer srv.Close()

	d := &Dispatcher{
		Sender:     HTTPSender{BaseURL: srv.URL + "/", APIKey: "key-1"},
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
		Logger:     zerolog.Nop(),
	}
	res, err := d.Notify(context.Background(), sampleRequest(false))
	require.NoError(t, err)
	require.Equal(t, "moliver@ramoncajal.com", res.LawyerEmail)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPSender_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid to address"}`))
	}))
	defer srv.Close()

	d := &Dispatcher{Sender: HTTPSender{BaseURL: srv.URL}, MaxRetries: 3, RetryDelay: time.Millisecond, Logger: zerolog.Nop()}
	_, err := d.Notify(context.Background(), sampleRequest(false))

	var se StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusUnprocessableEntity, se.Code)
	require.Equal(t, "invalid to address", se.Body)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestParseRetryAfter(t *testing.T) {
	require.Equal(t, 3*time.Second, parseRetryAfter("3"))
	require.Equal(t, time.Duration(0), parseRetryAfter(""))
	require.Equal(t, time.Duration(0), parseRetryAfter("soon"))
}
