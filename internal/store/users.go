package store

import (
	"context"
	"database/sql"
	"errors"

	"shiptrack-graphql/internal/apperrors"
	"shiptrack-graphql/internal/model"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"id", "email", "name", "role", "created_at"}

func scanUser(scan func(...interface{}) error) (*model.User, error) {
	var u model.User
	if err := scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsersByIDs fetches all listed users in one query, keyed by identifier.
// Identifiers with no matching record are simply absent from the result.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query, args, err := sq.Select(userColumns...).From("users").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// GetUser fetches one user by identifier. A missing record returns (nil, nil).
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUserBy(ctx, sq.Eq{"id": id})
}

// GetUserByEmail fetches one user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserBy(ctx, sq.Eq{"email": email})
}

func (s *Store) getUserBy(ctx context.Context, pred sq.Sqlizer) (*model.User, error) {
	query, args, err := sq.Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Upstream("failed to fetch user", err)
	}
	return user, nil
}

// ListUsers returns every user account ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	query, _, err := sq.Select(userColumns...).From("users").OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Upstream("failed to list users", err)
	}
	defer func() { _ = rows.Close() }()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows.Scan)
		if err != nil {
			return nil, apperrors.Upstream("failed to list users", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Upstream("failed to list users", err)
	}
	return users, nil
}
