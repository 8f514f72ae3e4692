// Package inmemdb is an in-memory implementation of the storage
// contracts, used by tests.
package inmemdb

import (
	"sync"

	"github.com/konatebeh20/EduTrack/core/student"
)

type (
	studentTable struct {
		mutex sync.RWMutex
		table map[int]*student.Student
	}

	courseTable struct {
		mutex sync.RWMutex
		table map[string]*student.CourseUnit // by code
	}

	gradeTable struct {
		mutex sync.RWMutex
		table map[gradeKey]*student.GradeRecord
	}

	gradeKey struct {
		studentID  int
		courseCode string
		term       string
	}

	DB struct {
		students *studentTable
		courses  *courseTable
		grades   *gradeTable
	}
)

func Open() (*DB, error) {
	db := &DB{
		students: &studentTable{table: make(map[int]*student.Student)},
		courses:  &courseTable{table: make(map[string]*student.CourseUnit)},
		grades:   &gradeTable{table: make(map[gradeKey]*student.GradeRecord)},
	}
	return db, nil
}
