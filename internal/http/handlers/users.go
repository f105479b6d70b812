package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Nmomos/hedgehog-reservation/internal/config"
	"github.com/Nmomos/hedgehog-reservation/internal/domain/profile"
	"github.com/Nmomos/hedgehog-reservation/internal/domain/user"
	"github.com/Nmomos/hedgehog-reservation/internal/http/middlewares"
	"github.com/Nmomos/hedgehog-reservation/internal/observability"
	"github.com/gin-gonic/gin"
)

type UserDirectory interface {
	Register(ctx context.Context, req user.CreateRequest) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
}

type ProfileReader interface {
	GetByUserID(ctx context.Context, userID int64) (profile.Profile, error)
}

type TokenIssuer interface {
	IssueAccessToken(u user.User) (string, error)
}

type UsersHandler struct {
	users    UserDirectory
	profiles ProfileReader
	jwt      TokenIssuer
	prom     *observability.Prom
}

func NewUsersHandler(users UserDirectory, profiles ProfileReader, jwt TokenIssuer, prom *observability.Prom) *UsersHandler {
	return &UsersHandler{
		users:    users,
		profiles: profiles,
		jwt:      jwt,
		prom:     prom,
	}
}

type RegisterRequest struct {
	NewUser user.CreateRequest `json:"new_user" binding:"required"`
}

// LoginForm follows the OAuth2 password flow shape: the username field
// carries the email.
type LoginForm struct {
	Username string `form:"username" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func (h *UsersHandler) countAuth(op, result string) {
	if h.prom != nil {
		h.prom.AuthAttempts.WithLabelValues(op, result).Inc()
	}
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	created, err := h.users.Register(cctx, req.NewUser)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			h.countAuth("register", "rejected")
			RespondBadRequest(ctx, "email_taken", "This email is already registered.")
		case errors.Is(err, user.ErrUsernameTaken):
			h.countAuth("register", "rejected")
			RespondBadRequest(ctx, "username_taken", "This username is already registered.")
		default:
			h.countAuth("register", "error")
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	token, err := h.jwt.IssueAccessToken(created)

	if err != nil {
		h.countAuth("register", "error")
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.countAuth("register", "ok")

	ctx.JSON(http.StatusCreated, user.PublicUser{
		User: created,
		Token: &user.AccessToken{
			AccessToken: token,
			TokenType:   "bearer",
		},
		Profile: h.profileFor(cctx, created.ID),
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var form LoginForm

	if !BindForm(ctx, &form) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.Authenticate(cctx, form.Username, form.Password)

	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			h.countAuth("login", "rejected")
			RespondUnAuthorized(ctx, "invalid_credentials", "Authentication was unsuccessful.")
			return
		}

		h.countAuth("login", "error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	token, err := h.jwt.IssueAccessToken(u)

	if err != nil {
		h.countAuth("login", "error")
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.countAuth("login", "ok")

	ctx.JSON(http.StatusOK, user.AccessToken{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	current, ok := middlewares.CurrentUser(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	ctx.JSON(http.StatusOK, user.PublicUser{
		User:    current,
		Profile: h.profileFor(cctx, current.ID),
	})
}

// profileFor is best effort: a user without a readable profile still gets
// their account payload.
func (h *UsersHandler) profileFor(ctx context.Context, userID int64) *profile.Profile {
	if h.profiles == nil {
		return nil
	}

	p, err := h.profiles.GetByUserID(ctx, userID)

	if err != nil {
		return nil
	}

	return &p
}
