package testutil

import (
	"testing"
	"time"

	"github.com/uzima/alama/core/student"
)

// CreateStudent scores `attrs` and persists the resulting record directly
// through the repository, bypassing the service.
func CreateStudent(
	t *testing.T,
	repo student.Repository,
	id int64,
	name string,
	attrs student.Attributes,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	s := student.Student{
		ID:          id,
		Name:        name,
		Attributes:  attrs,
		ScoreResult: student.ComputeScore(attrs),
		CreatedAt:   tstamp,
	}
	s, err := repo.CreateStudent(s)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return s
}
