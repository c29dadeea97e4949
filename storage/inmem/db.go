// Package inmemdb provides an in-memory student store, used by tests and
// available as a throwaway backend.
package inmemdb

import (
	"sync"

	"github.com/uzima/alama/core/student"
)

type studentTable struct {
	mutex sync.RWMutex
	table map[int64]*student.Student
}

type DB struct {
	student *studentTable
}

func NewDB() *DB {
	return &DB{
		student: &studentTable{table: make(map[int64]*student.Student)},
	}
}
