package auth

import (
	"context"
	"errors"
	"strings"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
	"mandi-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterOwnerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Service struct {
	store  *store.Store
	secret string
}

func NewService(s *store.Store, secret string) *Service {
	return &Service{store: s, secret: secret}
}

// RegisterOwner creates the first operator account. Once any account exists
// the call is refused.
func (s *Service) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, apperr.Validation("name, email and password are required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	existing, err := store.All[models.User](ctx, s.store)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, apperr.Conflict("an owner account already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := store.Create(ctx, s.store, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

var errBadCredentials = errors.New("invalid email or password")

// Login checks the password and returns a signed token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, *models.User, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	users, err := store.WhereEquals[models.User](ctx, s.store, "email", email)
	if err != nil {
		return "", nil, err
	}
	if len(users) == 0 {
		return "", nil, errBadCredentials
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, errBadCredentials
	}

	token, err := GenerateToken(s.secret, &user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

// POST /api/auth/register-owner
func RegisterOwnerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterOwnerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, err := svc.RegisterOwner(c.UserContext(), body)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		})
	}
}

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		token, user, err := svc.Login(c.UserContext(), body)
		if errors.Is(err, errBadCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, name := CurrentUser(c)
		return c.JSON(fiber.Map{
			"user_id": id,
			"name":    name,
		})
	}
}
