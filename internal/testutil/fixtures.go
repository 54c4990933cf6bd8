package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"qa-forum/internal/models"
)

// FixturePassword is the password of every fixture user
const FixturePassword = "password123"

// Fixtures holds test data
type Fixtures struct {
	Admin      *models.User
	Instructor *models.User
	Student    *models.User
	Reviewer   *models.User
	Question   *models.Question
}

// SetupFixtures creates one user per role and a question asked by the student
func SetupFixtures(t *testing.T, db *sql.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		Admin:      CreateUser(t, db, "admin", models.RoleAdmin),
		Instructor: CreateUser(t, db, "instructor", models.RoleInstructor),
		Student:    CreateUser(t, db, "student", models.RoleStudent),
		Reviewer:   CreateUser(t, db, "reviewer", models.RoleReviewer, models.RoleStudent),
	}

	f.Question = &models.Question{Title: "How do channels close?", AuthorID: f.Student.ID}
	err := db.QueryRow(
		"INSERT INTO questions (title, author_id) VALUES ($1, $2) RETURNING id, created_at",
		f.Question.Title, f.Question.AuthorID,
	).Scan(&f.Question.ID, &f.Question.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create question: %v", err)
	}

	return f
}

// CreateUser inserts a user holding roles in the given order
func CreateUser(t *testing.T, db *sql.DB, username string, roles ...string) *models.User {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := models.User{Username: username, Name: username, PasswordHash: string(hashedPassword)}
	if len(roles) > 0 {
		user.PrimaryRole = &roles[0]
	}

	err = db.QueryRow(`
		INSERT INTO users (username, name, password_hash, primary_role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, user.Username, user.Name, user.PasswordHash, user.PrimaryRole).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}

	_, err = db.Exec(`
		INSERT INTO user_roles (user_id, role_id, position, created_at)
		SELECT $1, r.id, t.ord - 1, $3
		FROM unnest($2::text[]) WITH ORDINALITY AS t(name, ord)
		JOIN roles r ON r.name = t.name
	`, user.ID, pq.Array(roles), time.Now())
	if err != nil {
		t.Fatalf("Failed to assign roles to %s: %v", username, err)
	}

	return &user
}
