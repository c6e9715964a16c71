package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/quantbasket/quantbasket/internal/identity"
	"github.com/quantbasket/quantbasket/internal/profiles"
)

// Handler exposes the auth endpoints: signup, login, refresh, logout,
// password reset and OAuth authorize-URL minting.
type Handler struct {
	ids      *identity.Service
	svc      *Service
	profiles *profiles.Service
	states   StateStore
}

func NewHandler(ids *identity.Service, svc *Service, profs *profiles.Service, states StateStore) *Handler {
	return &Handler{ids: ids, svc: svc, profiles: profs, states: states}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignUp registers an account, provisions its profile and returns a session.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Register(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password, FullName: req.FullName})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return fiber.NewError(http.StatusConflict, err.Error())
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.profiles.Create(c.UserContext(), user.ID, user.FullName); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	sess, err := h.svc.IssueSession(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(sess)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login validates credentials and returns a session.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.ids.Authenticate(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	sess, err := h.svc.IssueSession(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(sess)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a fresh session pair.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(sess)
}

// Logout invalidates the caller's tokens by bumping the token version.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
	}
	userID, err := h.svc.Verify(c.UserContext(), token)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	if err := h.svc.Logout(c.UserContext(), userID); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

type resetRequest struct {
	Email string `json:"email"`
}

// ResetPassword acknowledges a password reset request. The response does not
// reveal whether the email has an account.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email is required")
	}
	h.ids.BeginPasswordReset(c.UserContext(), req.Email)
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "reset_requested"})
}

type oauthRequest struct {
	RedirectTo string `json:"redirect_to"`
}

// OAuth mints the provider authorize URL for a browser redirect.
func (h *Handler) OAuth(c *fiber.Ctx) error {
	var req oauthRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	url, err := AuthorizeURL(c.UserContext(), h.states, c.Params("provider"), req.RedirectTo)
	if err != nil {
		if errors.Is(err, ErrUnknownProvider) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"url": url})
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
