package store

import "context"

// Migrate creates the local schema when missing. The ON DELETE rules are
// load-bearing for the sync engine: company → interview is CASCADE, stage
// and stage_method → interview are SET NULL (see the deduplicator).
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS companies (
	id         BIGSERIAL PRIMARY KEY,
	remote_id  BIGINT,
	name       TEXT NOT NULL,
	user_id    BIGINT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_companies_remote_id ON companies (remote_id);

CREATE TABLE IF NOT EXISTS stages (
	id        BIGSERIAL PRIMARY KEY,
	remote_id BIGINT,
	name      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stages_remote_id ON stages (remote_id);

CREATE TABLE IF NOT EXISTS stage_methods (
	id        BIGSERIAL PRIMARY KEY,
	remote_id BIGINT,
	name      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_stage_methods_remote_id ON stage_methods (remote_id);

CREATE TABLE IF NOT EXISTS interviews (
	id               BIGSERIAL PRIMARY KEY,
	remote_id        BIGINT,
	company_id       BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	stage_id         BIGINT REFERENCES stages(id) ON DELETE SET NULL,
	stage_method_id  BIGINT REFERENCES stage_methods(id) ON DELETE SET NULL,
	job_title        TEXT NOT NULL,
	client_company   TEXT NOT NULL DEFAULT '',
	interviewer      TEXT NOT NULL DEFAULT '',
	application_date TIMESTAMPTZ NOT NULL,
	scheduled_at     TIMESTAMPTZ,
	deadline         TIMESTAMPTZ,
	outcome          TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	link             TEXT NOT NULL DEFAULT '',
	metadata         JSONB NOT NULL DEFAULT '{}',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_interviews_remote_id ON interviews (remote_id);
CREATE INDEX IF NOT EXISTS idx_interviews_company_id ON interviews (company_id);
`)
	return err
}
