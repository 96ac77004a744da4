package auth

import (
	"testing"

	"careops/pkg/models"

	"github.com/google/uuid"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	if user, ok := r.users[email]; ok {
		return user, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.users[user.Email] = user
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.users[user.Email] = user
	return nil
}

var errNotFound = &notFoundError{}

type notFoundError struct{}

func (e *notFoundError) Error() string { return "not found" }

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	service := NewService(repo)

	hash, err := service.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	workspaceID := uuid.New()
	repo.users["dana@example.test"] = &models.User{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		WorkspaceID: &workspaceID,
		Email:       "dana@example.test",
		Password:    hash,
		Role:        "staff",
		IsActive:    true,
	}
	return service, repo
}

func TestLoginAndValidateToken(t *testing.T) {
	service, repo := newTestService(t)

	response, err := service.Login(LoginRequest{Email: "dana@example.test", Password: "correct horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if response.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if response.User.LastLoginAt == nil {
		t.Error("last login not recorded")
	}

	claims, err := service.ValidateToken(response.AccessToken)
	if err != nil {
		t.Fatalf("token validation failed: %v", err)
	}
	user := repo.users["dana@example.test"]
	if claims.UserID != user.ID {
		t.Errorf("claims user id = %v, want %v", claims.UserID, user.ID)
	}
	if claims.WorkspaceID == nil || *claims.WorkspaceID != *user.WorkspaceID {
		t.Errorf("claims workspace id = %v, want %v", claims.WorkspaceID, user.WorkspaceID)
	}
	if claims.Role != "staff" {
		t.Errorf("claims role = %q", claims.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service, repo := newTestService(t)

	if _, err := service.Login(LoginRequest{Email: "dana@example.test", Password: "wrong"}); err == nil {
		t.Error("wrong password should be rejected")
	}
	if _, err := service.Login(LoginRequest{Email: "nobody@example.test", Password: "correct horse"}); err == nil {
		t.Error("unknown user should be rejected")
	}

	repo.users["dana@example.test"].IsActive = false
	if _, err := service.Login(LoginRequest{Email: "dana@example.test", Password: "correct horse"}); err == nil {
		t.Error("disabled user should be rejected")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service, _ := newTestService(t)

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := service.ValidateToken(token); err == nil {
			t.Errorf("token %q should be rejected", token)
		}
	}
}
