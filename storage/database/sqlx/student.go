package sqlxrepos

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/uzima/alama/core/student"
)

const uniqueViolation = "23505"

type dbStudent struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Academic     string    `db:"academic"`
	ParentIncome string    `db:"parent_income"`
	FamilySize   string    `db:"family_size"`
	Motivation   string    `db:"motivation"`
	Behavior     string    `db:"behavior"`
	Score        float64   `db:"score"`
	Risk         string    `db:"risk"`
	Reason       string    `db:"reason"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row dbStudent) toStudent() student.Student {
	return student.Student{
		ID:   row.ID,
		Name: row.Name,
		Attributes: student.Attributes{
			Academic:     row.Academic,
			ParentIncome: row.ParentIncome,
			FamilySize:   row.FamilySize,
			Motivation:   row.Motivation,
			Behavior:     row.Behavior,
		},
		ScoreResult: student.ScoreResult{
			Score:  row.Score,
			Risk:   row.Risk,
			Reason: row.Reason,
		},
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func toRow(s student.Student) dbStudent {
	return dbStudent{
		ID:           s.ID,
		Name:         s.Name,
		Academic:     s.Academic,
		ParentIncome: s.ParentIncome,
		FamilySize:   s.FamilySize,
		Motivation:   s.Motivation,
		Behavior:     s.Behavior,
		Score:        s.Score,
		Risk:         s.Risk,
		Reason:       s.Reason,
		CreatedAt:    s.CreatedAt,
	}
}

type StudentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*StudentRepository)(nil)

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *StudentRepository) CreateStudent(s student.Student) (student.Student, error) {
	q := `INSERT INTO student (id, name, academic, parent_income, family_size, motivation, behavior, score, risk, reason, created_at)
	      VALUES (:id, :name, :academic, :parent_income, :family_size, :motivation, :behavior, :score, :risk, :reason, :created_at)`

	// IDs are submission timestamps; bump on a same-second collision.
	for {
		if _, err := repo.db.NamedExec(q, toRow(s)); err != nil {
			if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
				s.ID++
				continue
			}
			return student.Student{}, errors.Wrap(err, "inserting student")
		}
		return s, nil
	}
}

func (repo *StudentRepository) QueryAllStudents() ([]student.Student, error) {
	var rows []dbStudent
	if err := repo.db.Select(&rows, "SELECT * FROM student ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return toStudents(rows), nil
}

func (repo *StudentRepository) GetStudentByID(id int64) (student.Student, error) {
	var row dbStudent
	if err := repo.db.Get(&row, "SELECT * FROM student WHERE id = $1", id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *StudentRepository) FilterStudents(filter student.QueryFilter) ([]student.Student, error) {
	q := "SELECT * FROM student"
	clauses := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Risk != "" {
		args = append(args, filter.Risk)
		clauses = append(clauses, "risk = $"+strconv.Itoa(len(args)))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		clauses = append(clauses, "score >= $"+strconv.Itoa(len(args)))
	}
	if filter.MaxScore != nil {
		args = append(args, *filter.MaxScore)
		clauses = append(clauses, "score <= $"+strconv.Itoa(len(args)))
	}
	for i, c := range clauses {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY id"

	var rows []dbStudent
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return toStudents(rows), nil
}

func toStudents(rows []dbStudent) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students
}
