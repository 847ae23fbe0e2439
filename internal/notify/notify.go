package notify

import (
	"context"
	"errors"
	"time"

	"github.com/legal_queries/backend/internal/models"
)

var ErrNoQueries = errors.New("lawyer has no assigned queries")

type Item struct {
	RITM     string             `json:"ritm"`
	Typology string             `json:"typology"`
	IsUrgent bool               `json:"is_urgent"`
	Deadline time.Time          `json:"deadline"`
	Status   models.QueryStatus `json:"status"`
}

type Request struct {
	LawyerName  string `json:"lawyer_name"`
	LawyerEmail string `json:"lawyer_email"`
	Queries     []Item `json:"queries"`
	IsAutomatic bool   `json:"is_automatic"`
}

func (r Request) Urgent() []Item {
	return filterItems(r.Queries, true)
}

func (r Request) Normal() []Item {
	return filterItems(r.Queries, false)
}

type Result struct {
	LawyerEmail        string   `json:"lawyer_email"`
	ConfirmationEmails []string `json:"confirmation_emails"`
	Urgent             int      `json:"urgent"`
	Total              int      `json:"total"`
}

type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type Sender interface {
	Send(ctx context.Context, e Email) error
}

type Notifier interface {
	Notify(ctx context.Context, req Request) (Result, error)
}

// BuildRequest collects, in batch order, the queries bound to the lawyer by email.
func BuildRequest(l models.Lawyer, queries []models.Query, automatic bool) (Request, error) {
	return BuildRequestFiltered(l, queries, automatic, nil)
}

// BuildRequestFiltered is BuildRequest restricted to the queries keep accepts.
func BuildRequestFiltered(l models.Lawyer, queries []models.Query, automatic bool, keep func(models.Query) bool) (Request, error) {
	req := Request{
		LawyerName:  l.Name,
		LawyerEmail: l.Email,
		IsAutomatic: automatic,
	}
	for _, q := range queries {
		if q.AssignedLawyerEmail == "" || q.AssignedLawyerEmail != l.Email {
			continue
		}
		if keep != nil && !keep(q) {
			continue
		}
		req.Queries = append(req.Queries, Item{
			RITM:     q.RITM,
			Typology: q.Typology,
			IsUrgent: q.IsUrgent,
			Deadline: q.Deadline,
			Status:   q.Status,
		})
	}
	if len(req.Queries) == 0 {
		return Request{}, ErrNoQueries
	}
	return req, nil
}

func filterItems(items []Item, urgent bool) []Item {
	var out []Item
	for _, it := range items {
		if it.IsUrgent == urgent {
			out = append(out, it)
		}
	}
	return out
}
