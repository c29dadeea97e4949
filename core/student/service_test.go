package student

import (
	"strings"
	"sync"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/go-playground/locales/en"

	"github.com/uzima/alama/core"
)

type fakeRepo struct {
	mu    sync.RWMutex
	table map[int64]Student
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{table: make(map[int64]Student)}
}

func (r *fakeRepo) CreateStudent(s Student) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		if _, taken := r.table[s.ID]; !taken {
			break
		}
		s.ID++
	}
	r.table[s.ID] = s
	return s, nil
}

func (r *fakeRepo) QueryAllStudents() ([]Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	students := make([]Student, 0, len(r.table))
	for _, s := range r.table {
		students = append(students, s)
	}
	return students, nil
}

func (r *fakeRepo) GetStudentByID(id int64) (Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.table[id]; ok {
		return s, nil
	}
	return Student{}, ErrNotFound
}

func (r *fakeRepo) FilterStudents(filter QueryFilter) ([]Student, error) {
	all, _ := r.QueryAllStudents()
	matches := make([]Student, 0, len(all))
	for _, s := range all {
		if filter.Match(s) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

// mailRecorder records messages synchronously so tests can assert on them.
type mailRecorder struct {
	sent []*core.EmailMessage
}

func (m *mailRecorder) SendMessages(messages ...*core.EmailMessage) {
	m.sent = append(m.sent, messages...)
}

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func initValidators() {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validator.New(), translator)
}

func newTestService(repo Repository, mailSvc core.EmailService, alertEmail string) *Service {
	initValidators()
	conf := &core.Config{Debug: true, TestMode: true, AlertEmail: alertEmail}
	return NewService(repo, mailSvc, conf, nopLogger{})
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	mailSvc := &mailRecorder{}
	svc := newTestService(repo, mailSvc, "counselor@test.cd")

	now := time.Date(2021, 3, 14, 9, 26, 53, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	s, err := svc.Create(NewStudent{
		Name: "  Amani N.  ",
		Attributes: Attributes{
			Academic:     "80",
			ParentIncome: "15000",
			FamilySize:   "3",
			Motivation:   "4",
			Behavior:     "3",
		},
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if s.ID != now.Unix() {
		t.Errorf("ID = %v, want %v", s.ID, now.Unix())
	}
	if s.Name != "Amani N." {
		t.Errorf("Name = %q, want %q", s.Name, "Amani N.")
	}
	if s.Score != 74.58 || s.Risk != RiskLow {
		t.Errorf("ScoreResult = %+v, want score 74.58 / %q", s.ScoreResult, RiskLow)
	}
	if !s.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, now)
	}
	if len(mailSvc.sent) != 0 {
		t.Errorf("low risk submission should not alert; got %d messages", len(mailSvc.sent))
	}

	got, err := svc.GetByID(s.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.ID != s.ID || got.Score != s.Score {
		t.Errorf("GetByID() = %+v, want %+v", got, s)
	}
}

func TestService_Create_defaultsName(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &mailRecorder{}, "")

	s, err := svc.Create(NewStudent{Name: "   "})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if s.Name != DefaultName {
		t.Errorf("Name = %q, want %q", s.Name, DefaultName)
	}
}

func TestService_Create_nameTooLong(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &mailRecorder{}, "")

	_, err := svc.Create(NewStudent{Name: strings.Repeat("a", 256)})
	if err == nil {
		t.Fatal("Create() expected a validation error")
	}
	if _, ok := err.(validator.ValidationErrors); !ok {
		t.Errorf("err = %T, want validator.ValidationErrors", err)
	}
}

func TestService_Create_idCollisionBumps(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &mailRecorder{}, "")

	now := time.Date(2021, 3, 14, 9, 26, 53, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	first, err := svc.Create(NewStudent{Name: "First"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	second, err := svc.Create(NewStudent{Name: "Second"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if second.ID != first.ID+1 {
		t.Errorf("second.ID = %v, want %v", second.ID, first.ID+1)
	}
}

func TestService_Create_highRiskAlert(t *testing.T) {
	repo := newFakeRepo()
	mailSvc := &mailRecorder{}
	svc := newTestService(repo, mailSvc, "counselor@test.cd")

	s, err := svc.Create(NewStudent{Name: "At Risk"}) // all defaults => High Risk
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if s.Risk != RiskHigh {
		t.Fatalf("Risk = %q, want %q", s.Risk, RiskHigh)
	}

	if len(mailSvc.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(mailSvc.sent))
	}
	msg := mailSvc.sent[0]
	if msg.To[0].Address != "counselor@test.cd" {
		t.Errorf("To = %v, want counselor@test.cd", msg.To[0].Address)
	}
	if msg.TemplateName != "highriskalert" {
		t.Errorf("TemplateName = %q, want %q", msg.TemplateName, "highriskalert")
	}
}

func TestService_Create_noAlertConfigured(t *testing.T) {
	repo := newFakeRepo()
	mailSvc := &mailRecorder{}
	svc := newTestService(repo, mailSvc, "")

	if _, err := svc.Create(NewStudent{}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if len(mailSvc.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(mailSvc.sent))
	}
}

func TestService_FilterAndSummarize(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &mailRecorder{}, "")

	seed := []struct {
		id    int64
		score float64
		risk  string
	}{
		{1, 80, RiskLow},
		{2, 50, RiskMedium},
		{3, 40, RiskHigh},
		{4, 30, RiskHigh},
	}
	for _, s := range seed {
		if _, err := repo.CreateStudent(Student{
			ID:          s.id,
			Name:        "S",
			ScoreResult: ScoreResult{Score: s.score, Risk: s.risk, Reason: noConcernsReason},
			CreatedAt:   time.Now().UTC(),
		}); err != nil {
			t.Fatalf("seeding failed: %v", err)
		}
	}

	high, err := svc.Filter(QueryFilter{Risk: RiskHigh})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	if len(high) != 2 {
		t.Errorf("Filter(High Risk) returned %d students, want 2", len(high))
	}

	min := 45.0
	atLeastMedium, err := svc.Filter(QueryFilter{MinScore: &min})
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	if len(atLeastMedium) != 2 {
		t.Errorf("Filter(min_score=45) returned %d students, want 2", len(atLeastMedium))
	}

	sum, err := svc.Summarize()
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}
	want := Summary{Total: 4, LowRisk: 1, MediumRisk: 1, HighRisk: 2, AverageScore: 50}
	if sum != want {
		t.Errorf("Summarize() = %+v, want %+v", sum, want)
	}
}
