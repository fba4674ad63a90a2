package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaytau/shop-api/internal/dto"
	"github.com/snaytau/shop-api/internal/model"
	"github.com/snaytau/shop-api/internal/repository"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) ListRecent(_ context.Context, limit int) ([]model.User, error) {
	all, _ := f.List(context.Background())
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) { return len(f.users), nil }

func TestAuthService_RegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	reg, err := svc.Register(ctx, dto.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "customer", reg.User.Role)
	assert.Equal(t, "jane@example.com", reg.User.Email)

	stored, err := users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", stored.Password, "password must be stored hashed")

	login, err := svc.Login(ctx, dto.LoginRequest{
		Email:    "jane@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	token, err := jwt.Parse(login.Token, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, reg.User.ID.String(), claims["sub"])
	assert.Equal(t, "customer", claims["role"])
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	req := dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "hunter2hunter2"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	count, _ := users.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestAuthService_Login_BadCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "jane@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
