package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// UserRepository handles user and role assignment database operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, name, password_hash, primary_role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.PrimaryRole,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// CreateWithRoles inserts a user and its role set in one transaction.
// Nothing is stored when any role label is missing from the roles table.
func (r *UserRepository) CreateWithRoles(user *models.User, roles []string) error {
	now := time.Now()
	err := r.inTx("user", func(tx *sql.Tx) error {
		query := `
			INSERT INTO users (username, email, name, password_hash, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		err := tx.QueryRow(query, user.Username, user.Email, user.Name, user.PasswordHash, now, now).Scan(&user.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.ErrUsernameTaken
			}
			return apperror.Unavailable("create user", err)
		}
		return writeRoles(tx, user.ID, roles, now)
	})
	if err != nil {
		user.ID = 0
		return err
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	user.PrimaryRole = nil
	if len(roles) > 0 {
		primary := roles[0]
		user.PrimaryRole = &primary
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user := &models.User{}
	err := scanUser(r.db.QueryRow(query, id), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Unavailable("get user", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user := &models.User{}
	err := scanUser(r.db.QueryRow(query, username), user)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Unavailable("get user by username", err)
	}

	return user, nil
}

// GetAll retrieves all users with pagination
func (r *UserRepository) GetAll(limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, apperror.Unavailable("get users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, apperror.Unavailable("scan user", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("get users", err)
	}

	return users, nil
}

// CountAll returns the total number of users in the system
func (r *UserRepository) CountAll() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, apperror.Unavailable("count all users", err)
	}
	return count, nil
}

// GetUserRoles returns the role labels of a user in assignment order.
// It returns ErrUserNotFound when the user does not exist.
func (r *UserRepository) GetUserRoles(userID uint) ([]string, error) {
	query := `
		SELECT u.id, COALESCE(array_agg(r.name ORDER BY ur.position) FILTER (WHERE r.name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON u.id = ur.user_id
		LEFT JOIN roles r ON ur.role_id = r.id
		WHERE u.id = $1
		GROUP BY u.id
	`

	var id uint
	var roles []string
	err := r.db.QueryRow(query, userID).Scan(&id, pq.Array(&roles))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, apperror.Unavailable("get user roles", err)
	}

	return roles, nil
}

// CountUsersWithRole returns the number of users holding a role
func (r *UserRepository) CountUsersWithRole(role string) (int, error) {
	query := `
		SELECT COUNT(DISTINCT ur.user_id)
		FROM user_roles ur
		JOIN roles r ON ur.role_id = r.id
		WHERE r.name = $1
	`

	var count int
	if err := r.db.QueryRow(query, role).Scan(&count); err != nil {
		return 0, apperror.Unavailable("count users with role", err)
	}

	return count, nil
}

// ReplaceRoles swaps the complete role set of a user in one transaction and
// sets the primary role to the first label, or NULL for an empty set.
// Labels missing from the roles table roll the transaction back.
func (r *UserRepository) ReplaceRoles(userID uint, roles []string) error {
	return r.inTx("role", func(tx *sql.Tx) error {
		return writeRoles(tx, userID, roles, time.Now())
	})
}

// inTx runs fn in a transaction that is committed only when fn succeeds
func (r *UserRepository) inTx(name string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return apperror.Unavailable("begin "+name+" transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Error("Failed to rollback transaction", "transaction", name, "error", rbErr)
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.Unavailable("commit "+name+" transaction", err)
	}
	committed = true

	return nil
}

// writeRoles replaces the user_roles rows of a user and updates the primary role
func writeRoles(tx *sql.Tx, userID uint, roles []string, now time.Time) error {
	if _, err := tx.Exec(`DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return apperror.Unavailable("delete user roles", err)
	}

	insert := `
		INSERT INTO user_roles (user_id, role_id, position, created_at)
		SELECT $1, id, $3, $4 FROM roles WHERE name = $2
	`
	for i, role := range roles {
		result, err := tx.Exec(insert, userID, role, i, now)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperror.ErrUserNotFound
			}
			return apperror.Unavailable("insert user role", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return apperror.Unavailable("insert user role", err)
		} else if n == 0 {
			return fmt.Errorf("%w: %s", apperror.ErrUnknownRole, role)
		}
	}

	var primary *string
	if len(roles) > 0 {
		primary = &roles[0]
	}
	result, err := tx.Exec(`UPDATE users SET primary_role = $1, updated_at = $2 WHERE id = $3`, primary, now, userID)
	if err != nil {
		return apperror.Unavailable("update primary role", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrUserNotFound
	}

	return nil
}

// ListRoles returns every role row
func (r *UserRepository) ListRoles() ([]models.Role, error) {
	rows, err := r.db.Query(`SELECT id, name, description, created_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, apperror.Unavailable("get roles", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
			return nil, apperror.Unavailable("scan role", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("get roles", err)
	}

	return roles, nil
}
