package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository keyed by email.
type fakeRepo struct {
	byEmail map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*User{}}
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return ErrEmailAlreadyUsed
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeRepo) List(context.Context, UserFilter) ([]*User, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Update(_ context.Context, u *User) error { return nil }

func (f *fakeRepo) UpdateRole(_ context.Context, id, role string) error {
	u, err := f.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.Role = role
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	for email, u := range f.byEmail {
		if u.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return ErrNotFound
}

// plainHasher avoids bcrypt cost in tests.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

func TestRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})

	u, err := svc.Register(context.Background(), "  Amine ", " Amine@Example.COM ", "secret-pass")
	require.NoError(t, err)

	assert.Equal(t, "Amine", u.Name)
	assert.Equal(t, "amine@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "hashed:secret-pass", u.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	_, err := svc.Register(context.Background(), "Amine", "   ", "secret-pass")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(context.Background(), "Amine", "amine@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	_, err := svc.Register(context.Background(), "Amine", "amine@example.com", "secret-pass")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Imposteur", "AMINE@example.com", "other-pass")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})

	_, err := svc.Register(context.Background(), "Amine", "amine@example.com", "secret-pass")
	require.NoError(t, err)

	u, err := svc.Login(context.Background(), "amine@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "amine@example.com", u.Email)

	_, err = svc.Login(context.Background(), "amine@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts and bad passwords are indistinguishable.
	_, err = svc.Login(context.Background(), "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})

	u, err := svc.Register(context.Background(), "Amine", "amine@example.com", "secret-pass")
	require.NoError(t, err)
	u.ID = "u-1"

	require.NoError(t, svc.UpdateRole(context.Background(), "u-1", RoleManager))
	got, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, got.Role)

	assert.ErrorIs(t, svc.UpdateRole(context.Background(), "u-1", "superuser"), ErrInvalidRole)
}
