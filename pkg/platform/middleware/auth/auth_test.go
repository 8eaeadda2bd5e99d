package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	id "idcard/pkg/domain"
	"idcard/pkg/platform/httputil"
	"idcard/pkg/requestcontext"
)

const testUserID = "550e8400-e29b-41d4-a716-446655440001"

type mockValidator struct{ mock.Mock }

func (m *mockValidator) ValidateToken(tokenString string) (*JWTClaims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*JWTClaims), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRevocation struct{ mock.Mock }

func (m *mockRevocation) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

type AuthMiddlewareSuite struct {
	suite.Suite
	validator *mockValidator
	revoker   *mockRevocation
	logger    *slog.Logger

	called bool
	actor  id.Actor
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.validator = new(mockValidator)
	s.revoker = new(mockRevocation)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.called = false
	s.actor = id.Actor{}
}

func (s *AuthMiddlewareSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
	s.revoker.AssertExpectations(s.T())
}

func (s *AuthMiddlewareSuite) do(checker TokenRevocationChecker, header string) (*httptest.ResponseRecorder, httputil.Envelope) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.called = true
		s.actor = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/api/citizens", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	RequireAuth(s.validator, checker, s.logger)(next).ServeHTTP(rec, req)

	var env httputil.Envelope
	if rec.Code != http.StatusOK {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func validClaims() *JWTClaims {
	return &JWTClaims{UserID: testUserID, Username: "reg-1", Role: "Registrar", JTI: "jti-1"}
}

func (s *AuthMiddlewareSuite) TestValidTokenSetsActor() {
	s.validator.On("ValidateToken", "good").Return(validClaims(), nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-1").Return(false, nil)

	rec, _ := s.do(s.revoker, "Bearer good")

	s.Equal(http.StatusOK, rec.Code)
	s.True(s.called)
	s.Equal("reg-1", s.actor.Username)
	s.Equal(id.RoleRegistrar, s.actor.Role)
	s.Equal(testUserID, s.actor.ID.String())
}

func (s *AuthMiddlewareSuite) TestMissingOrMalformedHeader() {
	for _, header := range []string{"", "Basic abc", "Bearer ", "bearer good"} {
		rec, env := s.do(nil, header)
		s.Equal(http.StatusUnauthorized, rec.Code, header)
		s.Equal("unauthorized", env.Error)
		s.False(s.called)
	}
}

func (s *AuthMiddlewareSuite) TestInvalidToken() {
	s.validator.On("ValidateToken", "expired").Return(nil, errors.New("token is expired"))

	rec, env := s.do(nil, "Bearer expired")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("invalid or expired token", env.Message)
	s.NotContains(rec.Body.String(), "token is expired")
}

func (s *AuthMiddlewareSuite) TestRevokedToken() {
	s.validator.On("ValidateToken", "revoked").Return(validClaims(), nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-1").Return(true, nil)

	rec, env := s.do(s.revoker, "Bearer revoked")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("token has been revoked", env.Message)
	s.False(s.called)
}

func (s *AuthMiddlewareSuite) TestMissingJTIWithRevocationEnabled() {
	claims := validClaims()
	claims.JTI = ""
	s.validator.On("ValidateToken", "nojti").Return(claims, nil)

	rec, _ := s.do(s.revoker, "Bearer nojti")

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthMiddlewareSuite) TestRevocationLookupFailure() {
	s.validator.On("ValidateToken", "good").Return(validClaims(), nil)
	s.revoker.On("IsTokenRevoked", mock.Anything, "jti-1").Return(false, errors.New("redis down"))

	rec, env := s.do(s.revoker, "Bearer good")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("internal_error", env.Error)
}

func (s *AuthMiddlewareSuite) TestMalformedClaims() {
	cases := map[string]*JWTClaims{
		"bad user id":  {UserID: "nope", Role: "admin", JTI: "j"},
		"unknown role": {UserID: testUserID, Role: "superuser", JTI: "j"},
	}
	for name, claims := range cases {
		s.Run(name, func() {
			s.validator.On("ValidateToken", name).Return(claims, nil).Once()
			rec, _ := s.do(nil, "Bearer "+name)
			s.Equal(http.StatusUnauthorized, rec.Code)
		})
	}
}
