package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"jobmate/sync-service/internal/model"
)

var interviewColumns = []string{
	"id", "remote_id", "company_id", "stage_id", "stage_method_id",
	"job_title", "client_company", "interviewer", "application_date",
	"scheduled_at", "deadline", "outcome", "notes", "link", "metadata",
	"created_at", "updated_at",
}

func scanInterview(row interface{ Scan(...any) error }) (*model.Interview, error) {
	var i model.Interview
	err := row.Scan(
		&i.ID, &i.RemoteID, &i.CompanyID, &i.StageID, &i.StageMethodID,
		&i.JobTitle, &i.ClientCompany, &i.Interviewer, &i.ApplicationDate,
		&i.Date, &i.Deadline, &i.Outcome, &i.Notes, &i.Link, &i.Metadata,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (p *Postgres) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return p.listInterviews(ctx, nil)
}

func (p *Postgres) GuestInterviews(ctx context.Context) ([]model.Interview, error) {
	return p.listInterviews(ctx, sq.Eq{"remote_id": nil})
}

func (p *Postgres) listInterviews(ctx context.Context, pred sq.Eq) ([]model.Interview, error) {
	b := psql.Select(interviewColumns...).From("interviews").OrderBy("id")
	if pred != nil {
		b = b.Where(pred)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	defer rows.Close()

	interviews := make([]model.Interview, 0)
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		interviews = append(interviews, *i)
	}
	return interviews, rows.Err()
}

func (p *Postgres) InterviewByID(ctx context.Context, id int64) (*model.Interview, error) {
	return p.interviewWhere(ctx, sq.Eq{"id": id})
}

func (p *Postgres) InterviewByRemoteID(ctx context.Context, remoteID int64) (*model.Interview, error) {
	return p.interviewWhere(ctx, sq.Eq{"remote_id": remoteID})
}

func (p *Postgres) interviewWhere(ctx context.Context, pred sq.Eq) (*model.Interview, error) {
	query, args, err := psql.Select(interviewColumns...).From("interviews").
		Where(pred).OrderBy("id").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	i, err := scanInterview(p.db.QueryRow(ctx, query, args...))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get interview: %w", err)
	}
	return i, nil
}

func (p *Postgres) InsertInterview(ctx context.Context, i *model.Interview) error {
	query, args, err := psql.Insert("interviews").
		Columns("remote_id", "company_id", "stage_id", "stage_method_id",
			"job_title", "client_company", "interviewer", "application_date",
			"scheduled_at", "deadline", "outcome", "notes", "link", "metadata").
		Values(i.RemoteID, i.CompanyID, i.StageID, i.StageMethodID,
			i.JobTitle, i.ClientCompany, i.Interviewer, i.ApplicationDate,
			i.Date, i.Deadline, string(i.Outcome), i.Notes, i.Link, i.Metadata).
		Suffix("RETURNING id, created_at, updated_at").ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := p.db.QueryRow(ctx, query, args...).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return fmt.Errorf("insert interview: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateInterview(ctx context.Context, i *model.Interview) error {
	return p.exec(ctx, psql.Update("interviews").
		Set("remote_id", i.RemoteID).
		Set("company_id", i.CompanyID).
		Set("stage_id", i.StageID).
		Set("stage_method_id", i.StageMethodID).
		Set("job_title", i.JobTitle).
		Set("client_company", i.ClientCompany).
		Set("interviewer", i.Interviewer).
		Set("application_date", i.ApplicationDate).
		Set("scheduled_at", i.Date).
		Set("deadline", i.Deadline).
		Set("outcome", string(i.Outcome)).
		Set("notes", i.Notes).
		Set("link", i.Link).
		Set("metadata", i.Metadata).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": i.ID}))
}

func (p *Postgres) BindInterviewRemoteID(ctx context.Context, id, remoteID int64) error {
	return p.exec(ctx, psql.Update("interviews").
		Set("remote_id", remoteID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}

func (p *Postgres) SetInterviewOutcome(ctx context.Context, id int64, outcome model.Outcome) error {
	return p.exec(ctx, psql.Update("interviews").
		Set("outcome", string(outcome)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}))
}
