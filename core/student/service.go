package student

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/uzima/alama/core"
)

var ErrNotFound = errors.New("student not found")

var nowFunc = time.Now // mockable

type (
	Repository interface {
		// CreateStudent persists `s` as-is, except that a taken ID is bumped
		// to the next free one so submissions landing on the same second
		// never collide.
		CreateStudent(s Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id int64) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(filter QueryFilter) ([]Student, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		conf:    conf,
		logger:  logger,
	}
}

// Score computes a result without persisting anything.
func (svc *Service) Score(attrs Attributes) ScoreResult {
	return ComputeScore(attrs)
}

// Create scores the submission, persists it and fires a high-risk alert when
// one is configured. The alert is best-effort: a mail failure never fails
// the submission.
func (svc *Service) Create(ns NewStudent) (Student, error) {
	if err := ns.Validate(); err != nil {
		return Student{}, err
	}

	now := nowFunc().UTC()
	s := Student{
		ID:          now.Unix(),
		Name:        ns.Name,
		Attributes:  ns.Attributes,
		ScoreResult: ComputeScore(ns.Attributes),
		CreatedAt:   now,
	}

	s, err := svc.repo.CreateStudent(s)
	if err != nil {
		return Student{}, err
	}

	if s.Risk == RiskHigh {
		svc.sendHighRiskAlert(s)
	}
	return s, nil
}

func (svc *Service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *Service) GetByID(id int64) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) Filter(filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(filter)
}

func (svc *Service) Summarize() (Summary, error) {
	students, err := svc.repo.QueryAllStudents()
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	var total float64
	for _, s := range students {
		sum.Total++
		total += s.Score
		switch s.Risk {
		case RiskLow:
			sum.LowRisk++
		case RiskMedium:
			sum.MediumRisk++
		case RiskHigh:
			sum.HighRisk++
		}
	}
	if sum.Total > 0 {
		sum.AverageScore = round2(total / float64(sum.Total))
	}
	return sum, nil
}

func (svc *Service) sendHighRiskAlert(s Student) {
	if svc.conf.AlertEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: svc.conf.AlertEmail}},
		Subject:      fmt.Sprintf("High risk submission: %s", s.Name),
		TemplateName: "highriskalert",
		TemplateData: s,
	})
}
