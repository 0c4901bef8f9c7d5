package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"jobmate/sync-service/internal/model"
)

var companyColumns = []string{"id", "remote_id", "name", "user_id", "created_at"}

func scanCompany(row interface{ Scan(...any) error }) (*model.Company, error) {
	var c model.Company
	if err := row.Scan(&c.ID, &c.RemoteID, &c.Name, &c.UserID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Postgres) ListCompanies(ctx context.Context) ([]model.Company, error) {
	query, args, err := psql.Select(companyColumns...).From("companies").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (p *Postgres) CompanyByID(ctx context.Context, id int64) (*model.Company, error) {
	return p.companyWhere(ctx, sq.Eq{"id": id})
}

func (p *Postgres) CompanyByRemoteID(ctx context.Context, remoteID int64) (*model.Company, error) {
	return p.companyWhere(ctx, sq.Eq{"remote_id": remoteID})
}

func (p *Postgres) CompanyByName(ctx context.Context, name string) (*model.Company, error) {
	return p.companyWhere(ctx, sq.Eq{"name": name})
}

func (p *Postgres) companyWhere(ctx context.Context, pred sq.Eq) (*model.Company, error) {
	query, args, err := psql.Select(companyColumns...).From("companies").
		Where(pred).OrderBy("id").Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	c, err := scanCompany(p.db.QueryRow(ctx, query, args...))
	if noRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

func (p *Postgres) InsertCompany(ctx context.Context, c *model.Company) error {
	query, args, err := psql.Insert("companies").
		Columns("remote_id", "name", "user_id").
		Values(c.RemoteID, c.Name, c.UserID).
		Suffix("RETURNING id, created_at").ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := p.db.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateCompany(ctx context.Context, c *model.Company) error {
	return p.exec(ctx, psql.Update("companies").
		Set("remote_id", c.RemoteID).
		Set("name", c.Name).
		Set("user_id", c.UserID).
		Where(sq.Eq{"id": c.ID}))
}

// DeleteCompany removes a company; the schema cascades to its interviews.
// Callers that must not lose interviews reassign them first.
func (p *Postgres) DeleteCompany(ctx context.Context, id int64) error {
	return p.exec(ctx, psql.Delete("companies").Where(sq.Eq{"id": id}))
}

func (p *Postgres) ReassignInterviews(ctx context.Context, fromCompanyID, toCompanyID int64) error {
	return p.exec(ctx, psql.Update("interviews").
		Set("company_id", toCompanyID).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"company_id": fromCompanyID}))
}
