package remote

import (
	"net/url"
	"strconv"
	"time"
)

// ─── Wire DTOs ───────────────────────────────────────────────────────────────

// CompanyDTO mirrors one element of GET /companies.
type CompanyDTO struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID *int64 `json:"userId,omitempty"`
}

// StageDTO mirrors one element of GET /stages. The display name is carried
// in the "stage" field.
type StageDTO struct {
	ID    int64  `json:"id"`
	Stage string `json:"stage"`
}

// StageMethodDTO mirrors one element of GET /stage-methods.
type StageMethodDTO struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
}

// MetadataDTO is the optional nested metadata object on an interview.
type MetadataDTO struct {
	JobListing string `json:"jobListing,omitempty"`
	Location   string `json:"location,omitempty"`
}

// InterviewDTO mirrors one element of GET /interviews and the response body
// of POST /interview and PUT /interview/{id}. Dates are ISO-8601 strings.
type InterviewDTO struct {
	ID              int64           `json:"id"`
	JobTitle        string          `json:"jobTitle"`
	Interviewer     string          `json:"interviewer,omitempty"`
	Company         CompanyDTO      `json:"company"`
	ClientCompany   string          `json:"clientCompany,omitempty"`
	Stage           *StageDTO       `json:"stage,omitempty"`
	StageMethod     *StageMethodDTO `json:"stageMethod,omitempty"`
	ApplicationDate string          `json:"applicationDate"`
	Date            string          `json:"date,omitempty"`
	Deadline        string          `json:"deadline,omitempty"`
	Outcome         string          `json:"outcome,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Metadata        *MetadataDTO    `json:"metadata,omitempty"`
	Link            string          `json:"link,omitempty"`
}

// CreateInterviewPayload is the body of POST /interview. Reference entities
// are carried by display name — the server resolves or creates them.
type CreateInterviewPayload struct {
	JobTitle      string `json:"jobTitle"`
	Company       string `json:"company"`
	ClientCompany string `json:"clientCompany,omitempty"`
	Stage         string `json:"stage"`
	Interviewer   string `json:"interviewer,omitempty"`
	ApplicationDate string `json:"applicationDate"`
	Date          string `json:"date,omitempty"`
	Deadline      string `json:"deadline,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Link          string `json:"link,omitempty"`
	JobListing    string `json:"jobListing,omitempty"`
	LocationType  string `json:"locationType,omitempty"`
}

// UpdateInterviewPayload is the partial body of PUT /interview/{id}.
// Nil fields are omitted and left untouched server-side.
type UpdateInterviewPayload struct {
	JobTitle      *string `json:"jobTitle,omitempty"`
	ClientCompany *string `json:"clientCompany,omitempty"`
	Stage         *string `json:"stage,omitempty"`
	Interviewer   *string `json:"interviewer,omitempty"`
	Date          *string `json:"date,omitempty"`
	Deadline      *string `json:"deadline,omitempty"`
	Outcome       *string `json:"outcome,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Link          *string `json:"link,omitempty"`
}

// ─── Interview query filters ─────────────────────────────────────────────────

// InterviewFilters selects which interviews GET /interviews returns.
// Zero values are omitted from the query string.
type InterviewFilters struct {
	Date        *time.Time
	DateFrom    *time.Time
	DateTo      *time.Time
	IncludePast bool
	CompanyID   *int64
	Company     string
	Outcome     string
}

func (f InterviewFilters) query() url.Values {
	q := url.Values{}
	if f.Date != nil {
		q.Set("date", f.Date.UTC().Format(time.RFC3339))
	}
	if f.DateFrom != nil {
		q.Set("dateFrom", f.DateFrom.UTC().Format(time.RFC3339))
	}
	if f.DateTo != nil {
		q.Set("dateTo", f.DateTo.UTC().Format(time.RFC3339))
	}
	if f.IncludePast {
		q.Set("includePast", "true")
	}
	if f.CompanyID != nil {
		q.Set("companyId", strconv.FormatInt(*f.CompanyID, 10))
	}
	if f.Company != "" {
		q.Set("company", f.Company)
	}
	if f.Outcome != "" {
		q.Set("outcome", f.Outcome)
	}
	return q
}
