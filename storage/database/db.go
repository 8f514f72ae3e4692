package database

import (
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core"
)

func Open(conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.Database.Engine, u.String())
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

var schema = `
CREATE TABLE IF NOT EXISTS programs (
	id     SERIAL PRIMARY KEY,
	label  TEXT UNIQUE NOT NULL,
	domain TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS students (
	id                SERIAL PRIMARY KEY,
	surname           TEXT NOT NULL,
	given_name        TEXT NOT NULL,
	email             TEXT NOT NULL DEFAULT '',
	gender            TEXT NOT NULL DEFAULT '',
	birth_date        DATE NOT NULL DEFAULT '0001-01-01',
	birth_place       TEXT NOT NULL DEFAULT '',
	registration_code TEXT UNIQUE NOT NULL,
	program_id        INTEGER REFERENCES programs (id),
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS course_units (
	id     SERIAL PRIMARY KEY,
	code   TEXT UNIQUE NOT NULL,
	label  TEXT NOT NULL,
	weight INTEGER NOT NULL CHECK (weight > 0)
);

CREATE TABLE IF NOT EXISTS grades (
	id          SERIAL PRIMARY KEY,
	student_id  INTEGER NOT NULL REFERENCES students (id),
	course_code TEXT NOT NULL REFERENCES course_units (code),
	term        TEXT NOT NULL,
	score       NUMERIC(5, 2) NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (student_id, course_code, term)
);
`

func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "applying schema")
	}
	return nil
}
