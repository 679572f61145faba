package courses

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repo abstracts course persistence; tests substitute an in-memory fake.
type Repo interface {
	Insert(ctx context.Context, course Course) (Course, error)
	FindByID(ctx context.Context, id int64) (Course, error)
	List(ctx context.Context) ([]Course, error)
	Update(ctx context.Context, course Course) (Course, error)
	Delete(ctx context.Context, id int64) error
}

// NOTE: This repository assumes a courses table:
// (id, title, subtitle, description, price_cents, teacher_id, created_at, updated_at)
// with teacher_id REFERENCES users(id).

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func scanCourse(row interface{ Scan(...any) error }) (Course, error) {
	var c Course
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Subtitle,
		&c.Description,
		&c.PriceCents,
		&c.TeacherID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *PostgresRepo) Insert(ctx context.Context, course Course) (Course, error) {
	const q = `
INSERT INTO courses (title, subtitle, description, price_cents, teacher_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING id, created_at, updated_at
`
	now := time.Now().UTC()
	if err := r.db.QueryRowContext(ctx, q,
		course.Title,
		course.Subtitle,
		course.Description,
		course.PriceCents,
		course.TeacherID,
		now,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		return Course{}, err
	}
	return course, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (Course, error) {
	const q = `
SELECT id, title, subtitle, description, price_cents, teacher_id, created_at, updated_at
FROM courses
WHERE id = $1
`
	c, err := scanCourse(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return c, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]Course, error) {
	const q = `
SELECT id, title, subtitle, description, price_cents, teacher_id, created_at, updated_at
FROM courses
ORDER BY id
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, course Course) (Course, error) {
	const q = `
UPDATE courses
SET title = $2, subtitle = $3, description = $4, price_cents = $5, updated_at = $6
WHERE id = $1
RETURNING teacher_id, created_at, updated_at
`
	if err := r.db.QueryRowContext(ctx, q,
		course.ID,
		course.Title,
		course.Subtitle,
		course.Description,
		course.PriceCents,
		time.Now().UTC(),
	).Scan(&course.TeacherID, &course.CreatedAt, &course.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, err
	}
	return course, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM courses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
