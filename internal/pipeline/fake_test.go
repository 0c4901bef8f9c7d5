package pipeline

import (
	"context"
	"errors"
	"time"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/remote"
	"jobmate/sync-service/internal/store"
)

// ─── In-memory store ─────────────────────────────────────────────────────────

// memStore implements store.Store over slices, emulating the relationship
// rules of the real schema: company deletion cascades to interviews, stage
// and stage-method deletion nulls the reference.
type memStore struct {
	nextID     int64
	companies  []model.Company
	stages     []model.Stage
	methods    []model.StageMethod
	interviews []model.Interview

	listStagesErr error
}

func newMemStore() *memStore { return &memStore{} }

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) InTx(ctx context.Context, fn func(store.Store) error) error {
	// Single-writer tests: no isolation needed, fn mutates in place.
	return fn(m)
}

func (m *memStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return append([]model.Company(nil), m.companies...), nil
}

func (m *memStore) CompanyByID(ctx context.Context, id int64) (*model.Company, error) {
	for _, c := range m.companies {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CompanyByRemoteID(ctx context.Context, remoteID int64) (*model.Company, error) {
	for _, c := range m.companies {
		if c.RemoteID != nil && *c.RemoteID == remoteID {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) CompanyByName(ctx context.Context, name string) (*model.Company, error) {
	for _, c := range m.companies {
		if c.Name == name {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertCompany(ctx context.Context, c *model.Company) error {
	c.ID = m.id()
	c.CreatedAt = time.Now()
	m.companies = append(m.companies, *c)
	return nil
}

func (m *memStore) UpdateCompany(ctx context.Context, c *model.Company) error {
	for i := range m.companies {
		if m.companies[i].ID == c.ID {
			m.companies[i] = *c
			return nil
		}
	}
	return errors.New("company not found")
}

func (m *memStore) DeleteCompany(ctx context.Context, id int64) error {
	for i := range m.companies {
		if m.companies[i].ID == id {
			m.companies = append(m.companies[:i], m.companies[i+1:]...)
			break
		}
	}
	// Cascade, like the real schema.
	kept := m.interviews[:0]
	for _, iv := range m.interviews {
		if iv.CompanyID != id {
			kept = append(kept, iv)
		}
	}
	m.interviews = kept
	return nil
}

func (m *memStore) ReassignInterviews(ctx context.Context, fromCompanyID, toCompanyID int64) error {
	for i := range m.interviews {
		if m.interviews[i].CompanyID == fromCompanyID {
			m.interviews[i].CompanyID = toCompanyID
		}
	}
	return nil
}

func (m *memStore) ListStages(ctx context.Context) ([]model.Stage, error) {
	if m.listStagesErr != nil {
		return nil, m.listStagesErr
	}
	return append([]model.Stage(nil), m.stages...), nil
}

func (m *memStore) StageByID(ctx context.Context, id int64) (*model.Stage, error) {
	for _, s := range m.stages {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) StageByRemoteID(ctx context.Context, remoteID int64) (*model.Stage, error) {
	for _, s := range m.stages {
		if s.RemoteID != nil && *s.RemoteID == remoteID {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertStage(ctx context.Context, s *model.Stage) error {
	s.ID = m.id()
	m.stages = append(m.stages, *s)
	return nil
}

func (m *memStore) UpdateStage(ctx context.Context, s *model.Stage) error {
	for i := range m.stages {
		if m.stages[i].ID == s.ID {
			m.stages[i] = *s
			return nil
		}
	}
	return errors.New("stage not found")
}

func (m *memStore) DeleteStage(ctx context.Context, id int64) error {
	for i := range m.stages {
		if m.stages[i].ID == id {
			m.stages = append(m.stages[:i], m.stages[i+1:]...)
			break
		}
	}
	// Nullify, like the real schema.
	for i := range m.interviews {
		if m.interviews[i].StageID != nil && *m.interviews[i].StageID == id {
			m.interviews[i].StageID = nil
		}
	}
	return nil
}

func (m *memStore) CountStages(ctx context.Context) (int64, error) {
	return int64(len(m.stages)), nil
}

func (m *memStore) ListStageMethods(ctx context.Context) ([]model.StageMethod, error) {
	return append([]model.StageMethod(nil), m.methods...), nil
}

func (m *memStore) StageMethodByID(ctx context.Context, id int64) (*model.StageMethod, error) {
	for _, s := range m.methods {
		if s.ID == id {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) StageMethodByRemoteID(ctx context.Context, remoteID int64) (*model.StageMethod, error) {
	for _, s := range m.methods {
		if s.RemoteID != nil && *s.RemoteID == remoteID {
			cp := s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertStageMethod(ctx context.Context, s *model.StageMethod) error {
	s.ID = m.id()
	m.methods = append(m.methods, *s)
	return nil
}

func (m *memStore) UpdateStageMethod(ctx context.Context, s *model.StageMethod) error {
	for i := range m.methods {
		if m.methods[i].ID == s.ID {
			m.methods[i] = *s
			return nil
		}
	}
	return errors.New("stage method not found")
}

func (m *memStore) DeleteStageMethod(ctx context.Context, id int64) error {
	for i := range m.methods {
		if m.methods[i].ID == id {
			m.methods = append(m.methods[:i], m.methods[i+1:]...)
			break
		}
	}
	for i := range m.interviews {
		if m.interviews[i].StageMethodID != nil && *m.interviews[i].StageMethodID == id {
			m.interviews[i].StageMethodID = nil
		}
	}
	return nil
}

func (m *memStore) CountStageMethods(ctx context.Context) (int64, error) {
	return int64(len(m.methods)), nil
}

func (m *memStore) ListInterviews(ctx context.Context) ([]model.Interview, error) {
	return append([]model.Interview(nil), m.interviews...), nil
}

func (m *memStore) GuestInterviews(ctx context.Context) ([]model.Interview, error) {
	var guests []model.Interview
	for _, iv := range m.interviews {
		if iv.RemoteID == nil {
			guests = append(guests, iv)
		}
	}
	return guests, nil
}

func (m *memStore) InterviewByID(ctx context.Context, id int64) (*model.Interview, error) {
	for _, iv := range m.interviews {
		if iv.ID == id {
			cp := iv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) InterviewByRemoteID(ctx context.Context, remoteID int64) (*model.Interview, error) {
	for _, iv := range m.interviews {
		if iv.RemoteID != nil && *iv.RemoteID == remoteID {
			cp := iv
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) InsertInterview(ctx context.Context, i *model.Interview) error {
	i.ID = m.id()
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt
	m.interviews = append(m.interviews, *i)
	return nil
}

func (m *memStore) UpdateInterview(ctx context.Context, i *model.Interview) error {
	for idx := range m.interviews {
		if m.interviews[idx].ID == i.ID {
			m.interviews[idx] = *i
			return nil
		}
	}
	return errors.New("interview not found")
}

func (m *memStore) BindInterviewRemoteID(ctx context.Context, id, remoteID int64) error {
	for i := range m.interviews {
		if m.interviews[i].ID == id {
			rid := remoteID
			m.interviews[i].RemoteID = &rid
			return nil
		}
	}
	return errors.New("interview not found")
}

func (m *memStore) SetInterviewOutcome(ctx context.Context, id int64, outcome model.Outcome) error {
	for i := range m.interviews {
		if m.interviews[i].ID == id {
			m.interviews[i].Outcome = outcome
			return nil
		}
	}
	return errors.New("interview not found")
}

var _ store.Store = (*memStore)(nil)

// ─── Stub remote ─────────────────────────────────────────────────────────────

// stubRemote implements RemoteAPI with canned data, per-title create
// failures and call recording.
type stubRemote struct {
	authed     bool
	companies  []remote.CompanyDTO
	stages     []remote.StageDTO
	methods    []remote.StageMethodDTO
	interviews []remote.InterviewDTO

	companiesErr  error
	stagesErr     error
	methodsErr    error
	interviewsErr error

	// failTitles makes CreateInterview fail for those job titles.
	failTitles map[string]bool
	// echoCreates appends every created interview to the interviews list,
	// simulating a server whose catalog reflects the push.
	echoCreates  bool
	nextRemoteID int64

	calls   []string
	created []remote.CreateInterviewPayload
	updated []int64

	// onFetchCompanies runs before FetchCompanies returns; used to probe
	// re-entrancy from inside a pass.
	onFetchCompanies func()
}

func (r *stubRemote) Authenticated() bool { return r.authed }

func (r *stubRemote) FetchCompanies(ctx context.Context) ([]remote.CompanyDTO, error) {
	r.calls = append(r.calls, "fetchCompanies")
	if r.onFetchCompanies != nil {
		r.onFetchCompanies()
	}
	if r.companiesErr != nil {
		return nil, r.companiesErr
	}
	return r.companies, nil
}

func (r *stubRemote) FetchStages(ctx context.Context) ([]remote.StageDTO, error) {
	r.calls = append(r.calls, "fetchStages")
	if r.stagesErr != nil {
		return nil, r.stagesErr
	}
	return r.stages, nil
}

func (r *stubRemote) FetchStageMethods(ctx context.Context) ([]remote.StageMethodDTO, error) {
	r.calls = append(r.calls, "fetchStageMethods")
	if r.methodsErr != nil {
		return nil, r.methodsErr
	}
	return r.methods, nil
}

func (r *stubRemote) FetchInterviews(ctx context.Context, f remote.InterviewFilters) ([]remote.InterviewDTO, error) {
	r.calls = append(r.calls, "fetchInterviews")
	if r.interviewsErr != nil {
		return nil, r.interviewsErr
	}
	return r.interviews, nil
}

func (r *stubRemote) CreateInterview(ctx context.Context, p remote.CreateInterviewPayload) (*remote.InterviewDTO, error) {
	r.calls = append(r.calls, "createInterview")
	if r.failTitles[p.JobTitle] {
		return nil, &remote.ServerError{StatusCode: 500, Message: "create failed"}
	}
	r.created = append(r.created, p)
	r.nextRemoteID++

	companyID := int64(0)
	for _, c := range r.companies {
		if c.Name == p.Company {
			companyID = c.ID
		}
	}
	if companyID == 0 {
		// Server-side company creation as a push side effect.
		companyID = 1000 + r.nextRemoteID
		r.companies = append(r.companies, remote.CompanyDTO{ID: companyID, Name: p.Company})
	}

	dto := remote.InterviewDTO{
		ID:              r.nextRemoteID,
		JobTitle:        p.JobTitle,
		Interviewer:     p.Interviewer,
		Company:         remote.CompanyDTO{ID: companyID, Name: p.Company},
		ClientCompany:   p.ClientCompany,
		ApplicationDate: p.ApplicationDate,
		Date:            p.Date,
		Deadline:        p.Deadline,
		Notes:           p.Notes,
		Link:            p.Link,
	}
	if r.echoCreates {
		r.interviews = append(r.interviews, dto)
	}
	return &dto, nil
}

func (r *stubRemote) UpdateInterview(ctx context.Context, id int64, p remote.UpdateInterviewPayload) (*remote.InterviewDTO, error) {
	r.calls = append(r.calls, "updateInterview")
	r.updated = append(r.updated, id)
	dto := remote.InterviewDTO{ID: id}
	if p.JobTitle != nil {
		dto.JobTitle = *p.JobTitle
	}
	return &dto, nil
}

var _ RemoteAPI = (*stubRemote)(nil)

// ─── Shared helpers ──────────────────────────────────────────────────────────

func int64Ptr(v int64) *int64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func countCalls(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}
