package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gatherguru/pkg/claims"
)

const userColumns = "id, name, email, password, role, status, profile_image, created_at"

type MySQLRepo struct {
	DB *sql.DB
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &u.Status, &u.ProfileImage, &u.CreatedAt); err != nil {
		return nil, err
	}
	r, err := claims.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	u.Role = r
	return &u, nil
}

func (r *MySQLRepo) Create(ctx context.Context, user *User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Password, user.Role.String(), user.Status, user.ProfileImage, user.CreatedAt,
	)
	return err
}

func (r *MySQLRepo) findOne(ctx context.Context, where string, arg any) (*User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where+" = ?", arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *MySQLRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "email", email)
}

func (r *MySQLRepo) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *MySQLRepo) Update(ctx context.Context, user *User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, profile_image = ? WHERE id = ?",
		user.Name, user.ProfileImage, user.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *MySQLRepo) SetStatus(ctx context.Context, id string, status Status) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *MySQLRepo) List(ctx context.Context, role claims.Role) ([]*User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY created_at DESC", role.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *MySQLRepo) CountByRole(ctx context.Context, role claims.Role) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", role.String()).Scan(&n)
	return n, err
}

// expectOne reports ErrUserNotFound when an update touched no row.
// MySQL counts matched rows only with clientFoundRows=true in the DSN, which internal/mysql sets.
func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
