package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/meikuraledutech/botdag"
	"golang.org/x/crypto/bcrypt"
)

// TokenHeader is the request header holding the caller's JWT.
const TokenHeader = "token"

const localUser = "username"

// IssueToken signs an HS256 token for username that expires after ttl.
func IssueToken(secret []byte, username string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("server: jwt secret is empty")
	}
	claims := jwt.MapClaims{
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies raw and returns its username claim.
func ParseToken(secret []byte, raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("server: parse token: %w", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("server: unexpected claims")
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return "", errors.New("server: token has no username")
	}
	return username, nil
}

// requireUser rejects requests without a valid token and stores the username in locals.
func (s *Server) requireUser(c fiber.Ctx) error {
	raw := c.Get(TokenHeader)
	if raw == "" {
		return unauthorized(c, "Missing token header")
	}
	username, err := ParseToken(s.secret, raw)
	if err != nil {
		s.log.Debug().Err(err).Msg("token rejected")
		return unauthorized(c, "Could not decode JWT token")
	}
	c.Locals(localUser, username)
	return c.Next()
}

func currentUser(c fiber.Ctx) string {
	u, _ := c.Locals(localUser).(string)
	return u
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type signupRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(c fiber.Ctx) error {
	var req loginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(c, validationDetail(err))
	}

	user, err := s.store.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		return s.internalError(c, err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return unauthorized(c, "Invalid username or password")
	}
	return s.sendToken(c, user.Username)
}

func (s *Server) signup(c fiber.Ctx) error {
	var req signupRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := s.validator.Struct(req); err != nil {
		return badRequest(c, validationDetail(err))
	}

	byName, err := s.store.GetUserByUsername(c.Context(), req.Username)
	if err != nil {
		return s.internalError(c, err)
	}
	byEmail, err := s.store.GetUserByEmail(c.Context(), req.Email)
	if err != nil {
		return s.internalError(c, err)
	}
	switch {
	case byName != nil && byEmail != nil:
		return badRequest(c, "Username and email already registered")
	case byName != nil:
		return badRequest(c, "Username is taken")
	case byEmail != nil:
		return badRequest(c, "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.internalError(c, err)
	}
	user, err := s.store.CreateUser(c.Context(), &botdag.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hash),
	})
	if errors.Is(err, botdag.ErrUserExists) {
		return badRequest(c, "Username and email already registered")
	}
	if err != nil {
		return s.internalError(c, err)
	}
	s.log.Info().Str("user", user.Username).Msg("user signed up")
	return s.sendToken(c, user.Username)
}

func (s *Server) sendToken(c fiber.Ctx, username string) error {
	tok, err := IssueToken(s.secret, username, s.tokenTTL)
	if err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"msg": "success", "token": tok})
}
