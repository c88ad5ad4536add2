package model

import (
	"strings"
	"time"
)

// Submission is a service request stored from the public form.
// Field tags match the service_requests columns and the dashboard's wire format.
type Submission struct {
	ID                 int64     `json:"Id" db:"id"`
	FullName           string    `json:"name" db:"name"`
	ContactNumber      string    `json:"contact_number" db:"contact_number"`
	ServiceType        string    `json:"service" db:"service"`
	ProjectDescription string    `json:"description" db:"description"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// SubmissionInput carries the four user-supplied fields of a new submission.
type SubmissionInput struct {
	FullName           string `json:"fullName"`
	ContactNumber      string `json:"contactNumber"`
	ServiceType        string `json:"serviceType"`
	ProjectDescription string `json:"projectDescription"`
}

// MissingFields returns the JSON names of required fields that are empty or blank.
func (in SubmissionInput) MissingFields() []string {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("fullName", in.FullName)
	check("contactNumber", in.ContactNumber)
	check("serviceType", in.ServiceType)
	check("projectDescription", in.ProjectDescription)
	return missing
}

// NewSubmission builds an unsaved Submission from the input. ID and CreatedAt
// are assigned by the store.
func (in SubmissionInput) NewSubmission() *Submission {
	return &Submission{
		FullName:           in.FullName,
		ContactNumber:      in.ContactNumber,
		ServiceType:        in.ServiceType,
		ProjectDescription: in.ProjectDescription,
	}
}
