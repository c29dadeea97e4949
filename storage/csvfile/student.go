// Package csvfile persists students to an append-only CSV flat file.
// It is the default storage engine: one header row, one row per submission,
// records never updated or deleted.
package csvfile

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/uzima/alama/core/student"
)

var header = []string{
	"id", "name", "academic", "parent_income", "family_size",
	"motivation", "behavior", "score", "risk", "reason", "created_at",
}

type StudentRepository struct {
	path string
	mu   sync.Mutex
}

var _ student.Repository = (*StudentRepository)(nil)

// NewStudentRepository ensures the data file exists (with its header) and
// returns a repository reading from and appending to it.
func NewStudentRepository(path string) (*StudentRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return nil, errors.Wrap(err, "creating data file")
		}
		w := csv.NewWriter(f)
		_ = w.Write(header)
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "writing header")
		}
		if err := f.Close(); err != nil {
			return nil, errors.Wrap(err, "closing data file")
		}
	} else if err != nil {
		return nil, errors.Wrap(err, "checking data file")
	}
	return &StudentRepository{path: path}, nil
}

func (repo *StudentRepository) CreateStudent(s student.Student) (student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	existing, err := repo.readAll()
	if err != nil {
		return student.Student{}, err
	}
	taken := make(map[int64]bool, len(existing))
	for _, e := range existing {
		taken[e.ID] = true
	}
	for taken[s.ID] {
		s.ID++
	}

	f, err := os.OpenFile(repo.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "opening data file")
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(marshalRecord(s)); err != nil {
		return student.Student{}, errors.Wrap(err, "writing record")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return student.Student{}, errors.Wrap(err, "flushing record")
	}
	return s, nil
}

func (repo *StudentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return repo.readAll()
}

func (repo *StudentRepository) GetStudentByID(id int64) (student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	students, err := repo.readAll()
	if err != nil {
		return student.Student{}, err
	}
	for _, s := range students {
		if s.ID == id {
			return s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *StudentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	students, err := repo.readAll()
	if err != nil {
		return nil, err
	}
	matches := make([]student.Student, 0, len(students))
	for _, s := range students {
		if filter.Match(s) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

func (repo *StudentRepository) readAll() ([]student.Student, error) {
	f, err := os.Open(repo.path)
	if err != nil {
		return nil, errors.Wrap(err, "opening data file")
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading data file")
	}

	students := make([]student.Student, 0, len(rows))
	for i, row := range rows {
		if i == 0 { // header
			continue
		}
		s, err := unmarshalRecord(row)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing record %d", i)
		}
		students = append(students, s)
	}
	return students, nil
}

func marshalRecord(s student.Student) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.Name,
		s.Academic,
		s.ParentIncome,
		s.FamilySize,
		s.Motivation,
		s.Behavior,
		strconv.FormatFloat(s.Score, 'f', 2, 64),
		s.Risk,
		s.Reason,
		s.CreatedAt.Format(time.RFC3339),
	}
}

func unmarshalRecord(row []string) (student.Student, error) {
	if len(row) != len(header) {
		return student.Student{}, errors.Errorf("expected %d fields, got %d", len(header), len(row))
	}
	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "parsing id")
	}
	score, err := strconv.ParseFloat(row[7], 64)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "parsing score")
	}
	createdAt, err := time.Parse(time.RFC3339, row[10])
	if err != nil {
		return student.Student{}, errors.Wrap(err, "parsing created_at")
	}
	return student.Student{
		ID:   id,
		Name: row[1],
		Attributes: student.Attributes{
			Academic:     row[2],
			ParentIncome: row[3],
			FamilySize:   row[4],
			Motivation:   row[5],
			Behavior:     row[6],
		},
		ScoreResult: student.ScoreResult{
			Score:  score,
			Risk:   row[8],
			Reason: row[9],
		},
		CreatedAt: createdAt.UTC(),
	}, nil
}
