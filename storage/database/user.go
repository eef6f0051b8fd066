package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

const userCols = `id, tenant_id, name, username, email, role, is_active, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

// NewUserRepository returns the user repository backed by the global
// directory database.
func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	excluded := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excluded = append(excluded, usr.ID)
	}

	query, args, err := sqlx.In(
		`SELECT username, email FROM "user" WHERE (username = ? OR email = ?) AND id NOT IN (?)`,
		username, email, append(excluded, ""), // empty ID keeps IN non-empty
	)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var match struct {
		Username string `db:"username"`
		Email    string `db:"email"`
	}
	err = repo.db.GetContext(ctx, &match, repo.db.Rebind(query), args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking username uniqueness")
	}
	if match.Username == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO "user" (id, tenant_id, name, username, email, role, is_active, password_hash, created_at, updated_at, last_login)
		 VALUES (:id, :tenant_id, :name, :username, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	err := repo.db.SelectContext(ctx, &users, `SELECT `+userCols+` FROM "user" ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userCols+` FROM "user" WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by ID")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userCols+` FROM "user" WHERE username = $1 OR email = $1`, uname)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by username or email")
	}
	return usr, nil
}

func (repo *userRepository) GetPrincipalByID(ctx context.Context, id string) (user.Principal, error) {
	var p user.Principal
	err := repo.db.GetContext(ctx, &p,
		`SELECT u.id, u.email, u.name, u.role, u.tenant_id, t.db_name AS tenant_db
		 FROM "user" u JOIN tenant t ON t.id = u.tenant_id
		 WHERE u.id = $1 AND u.is_active`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.Principal{}, user.ErrNotFound
		}
		return user.Principal{}, errors.Wrap(err, "getting principal by ID")
	}
	return p, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.NamedExecContext(ctx,
		`UPDATE "user"
		 SET name = :name, username = :username, email = :email, role = :role,
		     is_active = :is_active, password_hash = :password_hash,
		     updated_at = :updated_at, last_login = :last_login
		 WHERE id = :id`, usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
