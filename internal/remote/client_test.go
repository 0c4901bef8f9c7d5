package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCompaniesAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/companies", r.URL.Path)
		json.NewEncoder(w).Encode([]CompanyDTO{{ID: 1, Name: "Acme"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-123")

	out, err := c.FetchCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Acme", out[0].Name)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestRequestsOmitAuthorizationWhenSignedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]StageDTO{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetToken("tok-123")
	c.SetToken("")
	assert.False(t, c.Authenticated())

	_, err := c.FetchStages(context.Background())
	require.NoError(t, err)
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchCompanies(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestServerErrorCarriesMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"json message body", 500, `{"message":"database on fire"}`, "database on fire"},
		{"no body falls back to status text", 503, "", "Service Unavailable"},
		{"non-json body falls back to status text", 400, "not json", "Bad Request"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).FetchCompanies(context.Background())
			var serr *ServerError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tc.status, serr.StatusCode)
			assert.Equal(t, tc.wantMsg, serr.Message)
		})
	}
}

func TestMalformedBodyMapsToDecodingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchStageMethods(context.Background())
	assert.ErrorIs(t, err, ErrDecoding)
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewClient(srv.URL).FetchCompanies(context.Background())
	var nerr *NetworkError
	assert.ErrorAs(t, err, &nerr)
}

func TestFetchInterviewsEncodesFilters(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interviews", r.URL.Path)
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode([]InterviewDTO{})
	}))
	defer srv.Close()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	companyID := int64(7)
	_, err := NewClient(srv.URL).FetchInterviews(context.Background(), InterviewFilters{
		DateFrom:    &from,
		IncludePast: true,
		CompanyID:   &companyID,
		Outcome:     "SCHEDULED",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2026-01-01T00:00:00Z"}, gotQuery["dateFrom"])
	assert.Equal(t, []string{"true"}, gotQuery["includePast"])
	assert.Equal(t, []string{"7"}, gotQuery["companyId"])
	assert.Equal(t, []string{"SCHEDULED"}, gotQuery["outcome"])
	assert.NotContains(t, gotQuery, "dateTo")
}

func TestFetchInterviewsOmitsEmptyQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		json.NewEncoder(w).Encode([]InterviewDTO{})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchInterviews(context.Background(), InterviewFilters{})
	require.NoError(t, err)
}

func TestCreateInterviewPostsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/interview", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p CreateInterviewPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, "Backend Engineer", p.JobTitle)
		assert.Equal(t, "Acme", p.Company)

		json.NewEncoder(w).Encode(InterviewDTO{ID: 100, JobTitle: p.JobTitle})
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL).CreateInterview(context.Background(), CreateInterviewPayload{
		JobTitle:        "Backend Engineer",
		Company:         "Acme",
		Stage:           "Applied",
		ApplicationDate: "2026-01-05T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), out.ID)
}

func TestUpdateInterviewPutsPartialBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/interview/42", r.URL.Path)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, "PASSED", raw["outcome"])
		assert.NotContains(t, raw, "jobTitle")

		json.NewEncoder(w).Encode(InterviewDTO{ID: 42})
	}))
	defer srv.Close()

	outcome := "PASSED"
	out, err := NewClient(srv.URL).UpdateInterview(context.Background(), 42, UpdateInterviewPayload{Outcome: &outcome})
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)
}

func TestNetworkErrorUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{Err: inner}
	assert.ErrorIs(t, err, inner)
}
