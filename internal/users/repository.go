package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"edunova-platform/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

// NOTE: This repository assumes the following tables exist:
// - users (id, username, email, password_hash, privilege_id, created_at, updated_at)
// - privileges (id, name)
// with UNIQUE (users.email) and users.privilege_id REFERENCES privileges(id).

// Repo abstracts the credential store: equality lookups and CRUD over typed
// records, nothing more. Tests substitute an in-memory fake.
type Repo interface {
	Insert(ctx context.Context, u User) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	UpdatePrivilege(ctx context.Context, id, privilegeID int64) error
	Delete(ctx context.Context, id int64) error

	Privileges(ctx context.Context) ([]Privilege, error)
}

// PostgresRepo implements Repo over database/sql with the pgx driver.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const userColumns = `
u.id, u.username, u.email, u.password_hash, u.privilege_id, p.name, u.created_at, u.updated_at
`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.PrivilegeID,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Insert creates the user row and resolves its role name in one transaction,
// so the returned record matches what was committed even if privileges are
// being reassigned concurrently.
func (r *PostgresRepo) Insert(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (username, email, password_hash, privilege_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
RETURNING id, created_at, updated_at
`
	now := time.Now().UTC()
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q, u.Username, u.Email, u.PasswordHash, u.PrivilegeID, now).Scan(
			&u.ID,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return ErrEmailTaken
			}
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT name FROM privileges WHERE id = $1`, u.PrivilegeID).Scan(&u.Role)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) FindByID(ctx context.Context, id int64) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users u
JOIN privileges p ON p.id = u.privilege_id
WHERE u.id = $1
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users u
JOIN privileges p ON p.id = u.privilege_id
WHERE u.email = $1
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users u
JOIN privileges p ON p.id = u.privilege_id
ORDER BY u.id
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdatePrivilege checks the target privilege and reassigns the user inside
// one transaction. ErrNotFound covers both a missing user and a missing
// privilege.
func (r *PostgresRepo) UpdatePrivilege(ctx context.Context, id, privilegeID int64) error {
	const q = `
UPDATE users
SET privilege_id = $2, updated_at = $3
WHERE id = $1
`
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM privileges WHERE id = $1)`, privilegeID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		res, err := tx.ExecContext(ctx, q, id, privilegeID, time.Now().UTC())
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
	})
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`
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

func (r *PostgresRepo) Privileges(ctx context.Context) ([]Privilege, error) {
	const q = `SELECT id, name FROM privileges ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Privilege
	for rows.Next() {
		var p Privilege
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}


// isUniqueViolation reports SQLSTATE 23505 (unique constraint).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
