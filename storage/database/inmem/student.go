package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/konatebeh20/EduTrack/core/student"
)

type studentRepository struct {
	db *DB

	stdPK   int
	cuPK    int
	gradePK int
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) queryStudents() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students.table))
	for _, std := range repo.db.students.table {
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].Surname != students[j].Surname {
			return students[i].Surname < students[j].Surname
		}
		if students[i].GivenName != students[j].GivenName {
			return students[i].GivenName < students[j].GivenName
		}
		return students[i].ID < students[j].ID
	})
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.students.mutex.Lock()
	defer repo.db.students.mutex.Unlock()

	for _, existing := range repo.db.students.table {
		if existing.RegistrationCode == std.RegistrationCode {
			return student.Student{}, student.ErrCodeExists
		}
	}
	repo.stdPK++
	std.ID = repo.stdPK
	now := time.Now().UTC()
	std.CreatedAt, std.UpdatedAt = now, now
	repo.db.students.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) UpsertStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.students.mutex.Lock()
	defer repo.db.students.mutex.Unlock()

	now := time.Now().UTC()
	for id, existing := range repo.db.students.table {
		if existing.RegistrationCode == std.RegistrationCode {
			std.ID = id
			std.CreatedAt = existing.CreatedAt
			std.UpdatedAt = now
			repo.db.students.table[id] = &std
			return std, nil
		}
	}
	repo.stdPK++
	std.ID = repo.stdPK
	std.CreatedAt, std.UpdatedAt = now, now
	repo.db.students.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int) (student.Student, error) {
	repo.db.students.mutex.RLock()
	defer repo.db.students.mutex.RUnlock()

	if std, ok := repo.db.students.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByRegistrationCode(_ context.Context, code string) (student.Student, error) {
	repo.db.students.mutex.RLock()
	defer repo.db.students.mutex.RUnlock()

	for _, std := range repo.db.students.table {
		if std.RegistrationCode == code {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.CohortFilter) ([]student.Student, error) {
	repo.db.students.mutex.RLock()
	defer repo.db.students.mutex.RUnlock()

	matches := make([]student.Student, 0)
	for _, std := range repo.queryStudents() {
		if filter.Search != "" && !matchesSearch(std, filter.Search) {
			continue
		}
		if filter.Program != "" && std.Program.Label != filter.Program {
			continue
		}
		matches = append(matches, std)
	}
	return matches, nil
}

func matchesSearch(std student.Student, search string) bool {
	search = strings.ToLower(search)
	return strings.Contains(strings.ToLower(std.Surname), search) ||
		strings.Contains(strings.ToLower(std.GivenName), search) ||
		strings.Contains(strings.ToLower(std.RegistrationCode), search)
}

func (repo *studentRepository) UpsertCourseUnit(_ context.Context, cu student.CourseUnit) (student.CourseUnit, error) {
	repo.db.courses.mutex.Lock()
	defer repo.db.courses.mutex.Unlock()

	if existing, ok := repo.db.courses.table[cu.Code]; ok {
		cu.ID = existing.ID
	} else {
		repo.cuPK++
		cu.ID = repo.cuPK
	}
	repo.db.courses.table[cu.Code] = &cu
	return cu, nil
}

func (repo *studentRepository) GetCourseUnitByCode(_ context.Context, code string) (student.CourseUnit, error) {
	repo.db.courses.mutex.RLock()
	defer repo.db.courses.mutex.RUnlock()

	if cu, ok := repo.db.courses.table[code]; ok {
		return *cu, nil
	}
	return student.CourseUnit{}, student.ErrCourseUnitNotFound
}

func (repo *studentRepository) UpsertGrade(_ context.Context, rec student.GradeRecord) (student.GradeRecord, error) {
	repo.db.grades.mutex.Lock()
	defer repo.db.grades.mutex.Unlock()

	key := gradeKey{studentID: rec.StudentID, courseCode: rec.CourseCode, term: rec.Term}
	now := time.Now().UTC()
	if existing, ok := repo.db.grades.table[key]; ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		repo.gradePK++
		rec.ID = repo.gradePK
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	repo.db.grades.table[key] = &rec
	return rec, nil
}

func (repo *studentRepository) QueryStudentGrades(_ context.Context, studentID int, term string) ([]student.GradeRecord, error) {
	repo.db.grades.mutex.RLock()
	defer repo.db.grades.mutex.RUnlock()

	recs := make([]student.GradeRecord, 0)
	for key, rec := range repo.db.grades.table {
		if key.studentID != studentID {
			continue
		}
		if term != "" && key.term != term {
			continue
		}
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].CourseCode < recs[j].CourseCode })
	return recs, nil
}
