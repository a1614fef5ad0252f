package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/okian/empiria/internal/domain/model"
	"github.com/okian/empiria/pkg/logger"
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an opened and migrated database.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("repository")
	}
	return s
}

const studentColumns = `id, name, branch, attendance, internal_avg, cert_type, cert_source`

func (s *SQLiteStore) ListStudents(ctx context.Context) ([]model.StudentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	students := make([]model.StudentRecord, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating students: %w", err)
	}
	return students, nil
}

func (s *SQLiteStore) GetStudent(ctx context.Context, id string) (model.StudentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ? ORDER BY seq LIMIT 1`, id)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StudentRecord{}, fmt.Errorf("student %q: %w", id, ErrNotFound)
	}
	return st, err
}

func (s *SQLiteStore) ReplaceStudents(ctx context.Context, students []model.StudentRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
			return fmt.Errorf("clearing students: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO students (`+studentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing student insert: %w", err)
		}
		defer stmt.Close()
		for i := range students {
			st := &students[i]
			if _, err := stmt.ExecContext(ctx,
				st.ID, st.Name, st.Branch, st.Attendance, st.InternalAvg, st.CertType, st.CertSource,
			); err != nil {
				return fmt.Errorf("inserting student %q: %w", st.ID, err)
			}
		}
		s.logger.Info(ctx, "student feed replaced", logger.Int("rows", len(students)))
		return nil
	})
}

func (s *SQLiteStore) ListOutcomes(ctx context.Context) ([]model.OutcomeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, cert_type, placed, salary, days FROM outcomes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := make([]model.OutcomeRecord, 0)
	for rows.Next() {
		var o model.OutcomeRecord
		if err := rows.Scan(&o.ID, &o.CertType, &o.Placed, &o.Salary, &o.Days); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}
	return outcomes, nil
}

func (s *SQLiteStore) AppendOutcome(ctx context.Context, o model.OutcomeRecord) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (id, cert_type, placed, salary, days) VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.CertType, o.Placed, o.Salary, o.Days,
	); err != nil {
		return fmt.Errorf("appending outcome: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendOutcomes(ctx context.Context, outcomes []model.OutcomeRecord) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO outcomes (id, cert_type, placed, salary, days) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing outcome insert: %w", err)
		}
		defer stmt.Close()
		for _, o := range outcomes {
			if _, err := stmt.ExecContext(ctx, o.ID, o.CertType, o.Placed, o.Salary, o.Days); err != nil {
				return fmt.Errorf("inserting outcome %q: %w", o.ID, err)
			}
		}
		s.logger.Info(ctx, "outcomes appended", logger.Int("rows", len(outcomes)))
		return nil
	})
}

func (s *SQLiteStore) ListSkills(ctx context.Context) ([]model.SkillDemand, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, payload FROM skill_demand ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	defer rows.Close()

	skills := make([]model.SkillDemand, 0)
	for rows.Next() {
		var (
			seq     int64
			payload string
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			return nil, fmt.Errorf("scanning skill row: %w", err)
		}
		row := model.SkillDemand{}
		if err := json.Unmarshal([]byte(payload), &row); err != nil {
			return nil, fmt.Errorf("skill row %d: %w: %v", seq, ErrBadSkills, err)
		}
		skills = append(skills, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating skills: %w", err)
	}
	return skills, nil
}

func (s *SQLiteStore) ReplaceSkills(ctx context.Context, skills []model.SkillDemand) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM skill_demand`); err != nil {
			return fmt.Errorf("clearing skills: %w", err)
		}
		for i, row := range skills {
			payload, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encoding skill row %d: %w", i, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO skill_demand (payload) VALUES (?)`, string(payload)); err != nil {
				return fmt.Errorf("inserting skill row %d: %w", i, err)
			}
		}
		s.logger.Info(ctx, "skill feed replaced", logger.Int("rows", len(skills)))
		return nil
	})
}

func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM students),
		(SELECT COUNT(*) FROM outcomes),
		(SELECT COUNT(*) FROM skill_demand)`).Scan(&c.Students, &c.Outcomes, &c.Skills)
	if err != nil {
		return Counts{}, fmt.Errorf("counting feeds: %w", err)
	}
	return c, nil
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(r rowScanner) (model.StudentRecord, error) {
	var st model.StudentRecord
	if err := r.Scan(&st.ID, &st.Name, &st.Branch, &st.Attendance, &st.InternalAvg, &st.CertType, &st.CertSource); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, err
		}
		return st, fmt.Errorf("scanning student: %w", err)
	}
	return st, nil
}
