package doctor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	doctors map[string]*Doctor
}

func newMockRepo() *mockRepo {
	return &mockRepo{doctors: make(map[string]*Doctor)}
}

func (m *mockRepo) Create(_ context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.Username] = d
	return nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Doctor, error) {
	d, ok := m.doctors[username]
	if !ok {
		return nil, ErrUnknownDoctor
	}
	return d, nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), "test-secret")
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()

	d, err := svc.Register(context.Background(), "dr.mehta", "s3cret", "Dr. Mehta")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if d.PasswordHash == "s3cret" || d.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	got, token, err := svc.Login(context.Background(), "dr.mehta", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.DisplayName != "Dr. Mehta" {
		t.Errorf("unexpected display name %q", got.DisplayName)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	sub, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sub != "dr.mehta" {
		t.Errorf("token subject = %q, want dr.mehta", sub)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), "dr.mehta", "s3cret", "Dr. Mehta")

	_, _, err := svc.Login(context.Background(), "dr.mehta", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Login(context.Background(), "nobody", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Register(context.Background(), "dr.mehta", "s3cret", "Dr. Mehta"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), "dr.mehta", "other", "Other")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name               string
		username, password string
		display            string
	}{
		{"missing username", "", "pw", "Dr. X"},
		{"missing password", "dr.x", "", "Dr. X"},
		{"missing name", "dr.x", "pw", "  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.username, tc.password, tc.display); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestVerifyToken_Tampered(t *testing.T) {
	svc := newTestService()
	svc.Register(context.Background(), "dr.mehta", "s3cret", "Dr. Mehta")
	_, token, err := svc.Login(context.Background(), "dr.mehta", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	other := NewService(newMockRepo(), "different-secret")
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected rejection under a different secret, got %v", err)
	}

	if _, err := svc.VerifyToken(token + "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected rejection of mangled token, got %v", err)
	}
}
