package models

import "time"

type QueryStatus string

const (
	StatusPending       QueryStatus = "pending"
	StatusInProcess     QueryStatus = "in_process"
	StatusCompleted     QueryStatus = "completed"
	StatusReclassified  QueryStatus = "reclassified"
	StatusElevated      QueryStatus = "elevated"
	StatusInfoRequested QueryStatus = "info_requested"
)

var QueryStatuses = []QueryStatus{
	StatusPending,
	StatusInProcess,
	StatusCompleted,
	StatusReclassified,
	StatusElevated,
	StatusInfoRequested,
}

func (s QueryStatus) Valid() bool {
	for _, v := range QueryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Open reports whether the query still needs work from its lawyer.
func (s QueryStatus) Open() bool {
	return s == StatusPending || s == StatusInProcess
}

type Lawyer struct {
	ID                 string   `json:"id" yaml:"id" validate:"required"`
	Name               string   `json:"name" yaml:"name" validate:"required"`
	Email              string   `json:"email" yaml:"email" validate:"required,email"`
	ExternalName       string   `json:"external_name" yaml:"external_name"`
	CanHandleUrgent    bool     `json:"can_handle_urgent" yaml:"can_handle_urgent"`
	Typologies         []string `json:"typologies" yaml:"typologies" validate:"required,min=1,dive,required"`
	WorkPercentage     int      `json:"work_percentage" yaml:"work_percentage" validate:"min=0,max=100"`
	CurrentAssignments int      `json:"current_assignments" yaml:"current_assignments" validate:"min=0"`
}

type Query struct {
	ID                  string      `json:"id"`
	RITM                string      `json:"ritm"`
	Typology            string      `json:"typology"`
	EntryDate           time.Time   `json:"entry_date"`
	Deadline            time.Time   `json:"deadline"`
	IsUrgent            bool        `json:"is_urgent"`
	AssignedLawyer      string      `json:"assigned_lawyer,omitempty"`
	AssignedLawyerEmail string      `json:"assigned_lawyer_email,omitempty"`
	Status              QueryStatus `json:"status"`
	LastAction          string      `json:"last_action,omitempty"`
	OfficeName          string      `json:"office_name,omitempty"`
}

func (q Query) Assigned() bool {
	return q.AssignedLawyer != "" || q.AssignedLawyerEmail != ""
}

type Run struct {
	ID         string    `json:"id"`
	Trigger    string    `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Summary    any       `json:"summary"`
}
