package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkolesnikov/linkcut/internal/database"
	"github.com/dkolesnikov/linkcut/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (r *MockUserRepository) Create(ctx context.Context, email, passwordHash string) (*models.User, error) {
	args := r.Called(ctx, email, passwordHash)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (r *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := r.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type AuthServiceTestSuite struct {
	suite.Suite
	errUnknown error
	repoMock   *MockUserRepository
	svc        *AuthService
}

func (suite *AuthServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *AuthServiceTestSuite) SetupSubTest() {
	suite.repoMock = new(MockUserRepository)
	suite.svc = NewAuthService(suite.repoMock, "test-secret", time.Hour)
}

func (suite *AuthServiceTestSuite) TearDownSubTest() {
	suite.repoMock.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestRegister() {
	suite.Run("email exists", func() {
		suite.repoMock.
			On("Create", context.Background(), "user@example.com", mock.Anything).
			Once().
			Return(nil, database.ErrEmailExists)

		user, err := suite.svc.Register(context.Background(), "user@example.com", "password123")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrEmailExists)
		suite.Nil(user)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("Create", context.Background(), "user@example.com", mock.Anything).
			Once().
			Run(func(args mock.Arguments) {
				hash := args.String(2)
				suite.NotEqual("password123", hash)
				suite.NoError(bcrypt.CompareHashAndPassword([]byte(hash), []byte("password123")))
			}).
			Return(&models.User{ID: 1, Email: "user@example.com"}, nil)

		user, err := suite.svc.Register(context.Background(), "user@example.com", "password123")

		suite.NoError(err)
		suite.NotNil(user)
		suite.Equal("user@example.com", user.Email)
	})
}

func (suite *AuthServiceTestSuite) TestLogin() {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	suite.Require().NoError(err)

	suite.Run("unknown email", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "missing@example.com").
			Once().
			Return(nil, database.ErrUserNotFound)

		token, err := suite.svc.Login(context.Background(), "missing@example.com", "password123")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidCredentials)
		suite.Empty(token)
	})

	suite.Run("wrong password", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "user@example.com").
			Once().
			Return(&models.User{ID: 1, Email: "user@example.com", PasswordHash: string(hash)}, nil)

		token, err := suite.svc.Login(context.Background(), "user@example.com", "wrong")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidCredentials)
		suite.Empty(token)
	})

	suite.Run("unknown error", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "user@example.com").
			Once().
			Return(nil, suite.errUnknown)

		token, err := suite.svc.Login(context.Background(), "user@example.com", "password123")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Empty(token)
	})

	suite.Run("success", func() {
		suite.repoMock.
			On("GetByEmail", context.Background(), "user@example.com").
			Once().
			Return(&models.User{ID: 42, Email: "user@example.com", PasswordHash: string(hash)}, nil)

		token, err := suite.svc.Login(context.Background(), "user@example.com", "password123")

		suite.NoError(err)
		suite.NotEmpty(token)

		userID, err := suite.svc.VerifyToken(token)

		suite.NoError(err)
		suite.Equal(int64(42), userID)
	})
}

func (suite *AuthServiceTestSuite) TestVerifyToken() {
	suite.Run("garbage token", func() {
		userID, err := suite.svc.VerifyToken("not-a-token")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidToken)
		suite.Zero(userID)
	})

	suite.Run("wrong secret", func() {
		other := NewAuthService(suite.repoMock, "other-secret", time.Hour)

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		suite.Require().NoError(err)

		suite.repoMock.
			On("GetByEmail", context.Background(), "user@example.com").
			Once().
			Return(&models.User{ID: 1, Email: "user@example.com", PasswordHash: string(hash)}, nil)

		token, err := other.Login(context.Background(), "user@example.com", "password123")
		suite.Require().NoError(err)

		userID, err := suite.svc.VerifyToken(token)

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidToken)
		suite.Zero(userID)
	})
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
