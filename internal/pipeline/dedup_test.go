package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobmate/sync-service/internal/model"
	"jobmate/sync-service/internal/remote"
)

func TestFindDupes(t *testing.T) {
	tests := []struct {
		name string
		rows []dedupRow
		want []dupe
	}{
		{
			name: "no duplicates",
			rows: []dedupRow{{id: 1, name: "A"}, {id: 2, name: "B"}},
			want: nil,
		},
		{
			name: "survivor prefers remote identity",
			rows: []dedupRow{{id: 1, name: "A"}, {id: 2, hasRemote: true, name: "A"}},
			want: []dupe{{drop: 1, keep: 2}},
		},
		{
			name: "first remote carrier wins among several",
			rows: []dedupRow{{id: 1, name: "A"}, {id: 2, hasRemote: true, name: "A"}, {id: 3, hasRemote: true, name: "A"}},
			want: []dupe{{drop: 1, keep: 2}, {drop: 3, keep: 2}},
		},
		{
			name: "all guest rows keep first encountered",
			rows: []dedupRow{{id: 7, name: "A"}, {id: 8, name: "A"}, {id: 9, name: "A"}},
			want: []dupe{{drop: 8, keep: 7}, {drop: 9, keep: 7}},
		},
		{
			name: "names are case sensitive",
			rows: []dedupRow{{id: 1, name: "Phone Screen"}, {id: 2, name: "phone screen"}},
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := findDupes(tc.rows)
			if len(got) != len(tc.want) {
				t.Fatalf("findDupes = %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("dupe[%d] = %+v, want %+v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

// A guest-created stage coexists with the reconciled row carrying the
// remote identity; one pass must converge on unique reconciled names.
func TestCleanupMergesGuestAndRemoteStages(t *testing.T) {
	st := newMemStore()
	st.stages = []model.Stage{
		{ID: 1, RemoteID: int64Ptr(1), Name: "Phone Screen"},
		{ID: 2, Name: "Phone Screen"},
		{ID: 3, Name: "Technical Interview"},
	}
	st.interviews = []model.Interview{{
		ID:              4,
		CompanyID:       0,
		StageID:         int64Ptr(2),
		JobTitle:        "Backend Engineer",
		RemoteID:        int64Ptr(900),
		ApplicationDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}}
	st.nextID = 4
	rc := &stubRemote{
		authed: true,
		stages: []remote.StageDTO{{ID: 1, Stage: "Phone Screen"}, {ID: 2, Stage: "Technical Interview"}},
	}
	svc := NewService(st, rc, nil)

	if err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}

	if got := len(st.stages); got != 2 {
		t.Fatalf("stages = %d, want 2: %+v", got, st.stages)
	}
	seen := map[string]bool{}
	for _, s := range st.stages {
		if seen[s.Name] {
			t.Errorf("duplicate stage name survived: %q", s.Name)
		}
		seen[s.Name] = true
		if s.RemoteID == nil {
			t.Errorf("surviving stage %q has no remote identity", s.Name)
		}
	}
	// A second pass must be a no-op.
	if err := svc.SyncAll(context.Background()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if got := len(st.stages); got != 2 {
		t.Errorf("stages = %d after second pass, want 2", got)
	}
}

func TestCleanupNullsReferencesToDroppedStages(t *testing.T) {
	st := newMemStore()
	st.stages = []model.Stage{
		{ID: 1, RemoteID: int64Ptr(1), Name: "Applied"},
		{ID: 2, Name: "Applied"},
	}
	st.interviews = []model.Interview{{
		ID:              3,
		CompanyID:       0,
		StageID:         int64Ptr(2),
		JobTitle:        "Backend Engineer",
		ApplicationDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}}
	st.nextID = 3
	svc := NewService(st, &stubRemote{authed: true}, nil)

	if err := svc.CleanupAll(context.Background()); err != nil {
		t.Fatalf("CleanupAll: %v", err)
	}
	if len(st.interviews) != 1 {
		t.Fatalf("interview deleted by stage dedup")
	}
	if st.interviews[0].StageID != nil {
		t.Errorf("stage reference = %v, want nil after drop", *st.interviews[0].StageID)
	}
}

func TestCleanupReassignsInterviewsBeforeCompanyDelete(t *testing.T) {
	st := newMemStore()
	st.companies = []model.Company{
		{ID: 1, RemoteID: int64Ptr(10), Name: "Acme"},
		{ID: 2, Name: "Acme"},
	}
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	st.interviews = []model.Interview{
		{ID: 3, CompanyID: 2, JobTitle: "On the duplicate", ApplicationDate: base},
		{ID: 4, CompanyID: 1, JobTitle: "On the survivor", ApplicationDate: base},
	}
	st.nextID = 4
	svc := NewService(st, &stubRemote{authed: true}, nil)

	if err := svc.CleanupAll(context.Background()); err != nil {
		t.Fatalf("CleanupAll: %v", err)
	}
	if got := len(st.companies); got != 1 {
		t.Fatalf("companies = %d, want 1", got)
	}
	if got := len(st.interviews); got != 2 {
		t.Fatalf("interviews = %d, want 2 — reassignment must run before the cascade delete", got)
	}
	for _, iv := range st.interviews {
		if iv.CompanyID != 1 {
			t.Errorf("interview %q owned by company %d, want 1", iv.JobTitle, iv.CompanyID)
		}
	}
}

func TestCleanupKindsAreIndependent(t *testing.T) {
	st := newMemStore()
	st.listStagesErr = errors.New("boom")
	st.methods = []model.StageMethod{
		{ID: 1, RemoteID: int64Ptr(5), Name: "Video Call"},
		{ID: 2, Name: "Video Call"},
	}
	st.nextID = 2
	svc := NewService(st, &stubRemote{authed: true}, nil)

	err := svc.CleanupAll(context.Background())
	if err == nil {
		t.Fatal("CleanupAll returned nil, want stage listing error")
	}
	if got := len(st.methods); got != 1 {
		t.Errorf("stage methods = %d, want 1 — method dedup must run despite the stage failure", got)
	}
}
