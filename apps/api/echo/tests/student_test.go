package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uzima/alama/core/student"
	emailsvc "github.com/uzima/alama/services/email"
	testutil "github.com/uzima/alama/tests"
)

func TestStudentApi_ping(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/api/ping")
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestStudentApi_pages(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<form")

	req, rec = newRequest(http.MethodGet, "/dashboard")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")
}

func TestStudentApi_formSubmit(t *testing.T) {
	app := setup(t)

	form := make(url.Values)
	form.Set("name", "Amani N.")
	form.Set("academic", "80")
	form.Set("parent_income", "15000")
	form.Set("family_size", "3")
	form.Set("motivation", "4")
	form.Set("behavior", "3")

	req, rec := newFormRequest("/submit", form)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	students, err := stdRepo.QueryAllStudents()
	if err != nil {
		t.Fatalf("QueryAllStudents() failed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("persisted %d students, want 1", len(students))
	}
	s := students[0]
	assert.Equal(t, "Amani N.", s.Name)
	assert.Equal(t, 74.58, s.Score)
	assert.Equal(t, student.RiskLow, s.Risk)
	assert.Equal(t, "No major concerns found", s.Reason)
}

func TestStudentApi_studentCreate(t *testing.T) {
	app := setup(t)
	emailsvc.ClearSentMessages()

	body := marchallObj(t, student.NewStudent{
		Name: "At Risk",
		// all attributes missing: defaults apply => High Risk
	})
	req, rec := newRequest(http.MethodPost, "/api/students", body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var s student.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("unmarshalling response failed: %v", err)
	}
	assert.Equal(t, "At Risk", s.Name)
	assert.Equal(t, 43.33, s.Score)
	assert.Equal(t, student.RiskHigh, s.Risk)
	assert.NotZero(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	persisted, err := stdRepo.GetStudentByID(s.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() failed: %v", err)
	}
	assert.Equal(t, s.Score, persisted.Score)

	// a high-risk submission fires the configured alert
	mailSvc.Wait()
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d alert messages, want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, "counselor@test.cd", msg.To[0].Address)
	assert.Contains(t, msg.TextContent, student.RiskHigh)
}

func TestStudentApi_studentCreate_invalidName(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, student.NewStudent{Name: strings.Repeat("a", 256)})
	req, rec := newRequest(http.MethodPost, "/api/students", body)
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentApi_studentQuery(t *testing.T) {
	app := setup(t)

	now := time.Date(2021, 3, 14, 9, 0, 0, 0, time.UTC)
	s1 := testutil.CreateStudent(t, stdRepo, 1, "Low", student.Attributes{
		Academic: "80", ParentIncome: "15000", FamilySize: "3", Motivation: "4", Behavior: "3",
	}, now)
	s2 := testutil.CreateStudent(t, stdRepo, 2, "High", student.Attributes{}, now)
	s3 := testutil.CreateStudent(t, stdRepo, 3, "Medium", student.Attributes{
		Academic: "60", ParentIncome: "20000", FamilySize: "1", Motivation: "3", Behavior: "2",
	}, now)

	path := func(params url.Values) string {
		if len(params) == 0 {
			return "/api/students"
		}
		return "/api/students?" + params.Encode()
	}

	tests := []httpTest{
		{
			name:     "all students",
			method:   http.MethodGet,
			path:     path(nil),
			wantCode: http.StatusOK,
			wantData: marchallList(t, s1, s2, s3),
		},
		{
			name:     "filter by risk",
			method:   http.MethodGet,
			path:     path(url.Values{"risk": []string{student.RiskHigh}}),
			wantCode: http.StatusOK,
			wantData: marchallList(t, s2),
		},
		{
			name:     "filter by min score",
			method:   http.MethodGet,
			path:     path(url.Values{"min_score": []string{"50"}}),
			wantCode: http.StatusOK,
			wantData: marchallList(t, s1, s3),
		},
		{
			name:     "filter by score range",
			method:   http.MethodGet,
			path:     path(url.Values{"min_score": []string{"50"}, "max_score": []string{"60"}}),
			wantCode: http.StatusOK,
			wantData: marchallList(t, s3),
		},
		{
			name:     "no matches",
			method:   http.MethodGet,
			path:     path(url.Values{"risk": []string{student.RiskMedium}, "max_score": []string{"10"}}),
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestStudentApi_studentRetrieve(t *testing.T) {
	app := setup(t)

	now := time.Date(2021, 3, 14, 9, 0, 0, 0, time.UTC)
	s := testutil.CreateStudent(t, stdRepo, 42, "Amani N.", student.Attributes{Academic: "90"}, now)

	tests := []httpTest{
		{
			name:     "found",
			method:   http.MethodGet,
			path:     "/api/students/42",
			wantCode: http.StatusOK,
			wantData: marchallObj(t, s),
		},
		{
			name:     "missing",
			method:   http.MethodGet,
			path:     "/api/students/404",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "non-numeric id",
			method:   http.MethodGet,
			path:     "/api/students/lol",
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestStudentApi_studentSummary(t *testing.T) {
	app := setup(t)

	now := time.Date(2021, 3, 14, 9, 0, 0, 0, time.UTC)
	testutil.CreateStudent(t, stdRepo, 1, "Low", student.Attributes{
		Academic: "80", ParentIncome: "15000", FamilySize: "3", Motivation: "4", Behavior: "3",
	}, now) // 74.58
	testutil.CreateStudent(t, stdRepo, 2, "High", student.Attributes{}, now) // 43.33
	testutil.CreateStudent(t, stdRepo, 3, "Medium", student.Attributes{
		Academic: "60", ParentIncome: "20000", FamilySize: "1", Motivation: "3", Behavior: "2",
	}, now) // 55.33

	tt := httpTest{
		name:     "summary",
		method:   http.MethodGet,
		path:     "/api/students/summary",
		wantCode: http.StatusOK,
		wantData: marchallObj(t, student.Summary{
			Total: 3, LowRisk: 1, MediumRisk: 1, HighRisk: 1, AverageScore: 57.75,
		}),
	}
	req, rec := newRequest(tt.method, tt.path)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func TestStudentApi_scorePreview(t *testing.T) {
	app := setup(t)

	body := marchallObj(t, student.Attributes{
		Academic: "80", ParentIncome: "15000", FamilySize: "3", Motivation: "4", Behavior: "3",
	})
	req, rec := newRequest(http.MethodPost, "/api/score", body)
	app.ServeHTTP(rec, req)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, student.ScoreResult{
			Score: 74.58, Risk: student.RiskLow, Reason: "No major concerns found",
		}),
	}
	checkCodeAndData(t, tt, rec)

	// nothing persisted
	students, err := stdRepo.QueryAllStudents()
	if err != nil {
		t.Fatalf("QueryAllStudents() failed: %v", err)
	}
	assert.Len(t, students, 0)
}
