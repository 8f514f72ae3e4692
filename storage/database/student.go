package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

// studentRow adds the joined program columns to the Student model.
type studentRow struct {
	student.Student
	ProgID     sql.NullInt64  `db:"prog_id"`
	ProgLabel  sql.NullString `db:"prog_label"`
	ProgDomain sql.NullString `db:"prog_domain"`
}

func (r studentRow) toStudent() student.Student {
	std := r.Student
	if r.ProgID.Valid {
		std.Program = student.Program{
			ID:     int(r.ProgID.Int64),
			Label:  r.ProgLabel.String,
			Domain: r.ProgDomain.String,
		}
		std.ProgramID = int(r.ProgID.Int64)
	}
	return std
}

const studentSelect = `
SELECT s.id, s.surname, s.given_name, s.email, s.gender, s.birth_date, s.birth_place,
       s.registration_code, COALESCE(s.program_id, 0) AS program_id, s.created_at, s.updated_at,
       p.id AS prog_id, p.label AS prog_label, p.domain AS prog_domain
  FROM students s
  LEFT JOIN programs p ON p.id = s.program_id`

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	progID, err := repo.ensureProgram(ctx, std.Program)
	if err != nil {
		return student.Student{}, err
	}
	err = repo.db.QueryRowxContext(ctx, `
		INSERT INTO students (surname, given_name, email, gender, birth_date, birth_place, registration_code, program_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		std.Surname, std.GivenName, std.Email, std.Gender, std.BirthDate, std.BirthPlace,
		std.RegistrationCode, progID,
	).Scan(&std.ID, &std.CreatedAt, &std.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo *studentRepository) UpsertStudent(ctx context.Context, std student.Student) (student.Student, error) {
	progID, err := repo.ensureProgram(ctx, std.Program)
	if err != nil {
		return student.Student{}, err
	}
	err = repo.db.QueryRowxContext(ctx, `
		INSERT INTO students (surname, given_name, email, gender, birth_date, birth_place, registration_code, program_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (registration_code) DO UPDATE SET
			surname = EXCLUDED.surname,
			given_name = EXCLUDED.given_name,
			email = EXCLUDED.email,
			gender = EXCLUDED.gender,
			birth_date = EXCLUDED.birth_date,
			birth_place = EXCLUDED.birth_place,
			program_id = EXCLUDED.program_id,
			updated_at = now()
		RETURNING id, created_at, updated_at`,
		std.Surname, std.GivenName, std.Email, std.Gender, std.BirthDate, std.BirthPlace,
		std.RegistrationCode, progID,
	).Scan(&std.ID, &std.CreatedAt, &std.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "upserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, studentSelect+` WHERE s.id = $1`, id)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudentByRegistrationCode(ctx context.Context, code string) (student.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, studentSelect+` WHERE s.registration_code = $1`, code)
	if err == sql.ErrNoRows {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.CohortFilter) ([]student.Student, error) {
	query := studentSelect + ` WHERE 1 = 1`
	args := make([]interface{}, 0, 2)
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (s.surname ILIKE $1 OR s.given_name ILIKE $1 OR s.registration_code ILIKE $1)`
	}
	if filter.Program != "" {
		args = append(args, filter.Program)
		if len(args) == 1 {
			query += ` AND p.label = $1`
		} else {
			query += ` AND p.label = $2`
		}
	}
	query += ` ORDER BY s.surname, s.given_name, s.id`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

func (repo *studentRepository) UpsertCourseUnit(ctx context.Context, cu student.CourseUnit) (student.CourseUnit, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO course_units (code, label, weight)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET label = EXCLUDED.label, weight = EXCLUDED.weight
		RETURNING id`,
		cu.Code, cu.Label, cu.Weight,
	).Scan(&cu.ID)
	if err != nil {
		return student.CourseUnit{}, errors.Wrap(err, "upserting course unit")
	}
	return cu, nil
}

func (repo *studentRepository) GetCourseUnitByCode(ctx context.Context, code string) (student.CourseUnit, error) {
	var cu student.CourseUnit
	err := repo.db.GetContext(ctx, &cu, `SELECT id, code, label, weight FROM course_units WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return student.CourseUnit{}, student.ErrCourseUnitNotFound
	}
	if err != nil {
		return student.CourseUnit{}, errors.Wrap(err, "getting course unit")
	}
	return cu, nil
}

func (repo *studentRepository) UpsertGrade(ctx context.Context, rec student.GradeRecord) (student.GradeRecord, error) {
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO grades (student_id, course_code, term, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, course_code, term) DO UPDATE SET score = EXCLUDED.score, updated_at = now()
		RETURNING id, created_at, updated_at`,
		rec.StudentID, rec.CourseCode, rec.Term, rec.Score,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return student.GradeRecord{}, errors.Wrap(err, "upserting grade")
	}
	return rec, nil
}

func (repo *studentRepository) QueryStudentGrades(ctx context.Context, studentID int, term string) ([]student.GradeRecord, error) {
	query := `SELECT id, student_id, course_code, term, score, created_at, updated_at FROM grades WHERE student_id = $1`
	args := []interface{}{studentID}
	if term != "" {
		query += ` AND term = $2`
		args = append(args, term)
	}
	query += ` ORDER BY course_code`

	var recs []student.GradeRecord
	if err := repo.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return recs, nil
}

// ensureProgram finds or creates the program for the given label. A
// blank label means no program affiliation.
func (repo *studentRepository) ensureProgram(ctx context.Context, prog student.Program) (sql.NullInt64, error) {
	if prog.Label == "" {
		return sql.NullInt64{}, nil
	}
	var id int64
	err := repo.db.QueryRowxContext(ctx, `
		INSERT INTO programs (label, domain)
		VALUES ($1, $2)
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING id`,
		prog.Label, prog.Domain,
	).Scan(&id)
	if err != nil {
		return sql.NullInt64{}, errors.Wrap(err, "ensuring program")
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}
