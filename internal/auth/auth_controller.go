package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/DhavalSuthar-24/padel/internal/user"
	"github.com/DhavalSuthar-24/padel/pkg/responses"
	"github.com/DhavalSuthar-24/padel/pkg/token"
	"github.com/DhavalSuthar-24/padel/utils"
	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type AuthController struct {
	repo   AuthRepository
	secret string
	expiry time.Duration
	logger zerolog.Logger
}

func NewAuthController(repo AuthRepository, secret string, expiry time.Duration, logger zerolog.Logger) *AuthController {
	return &AuthController{
		repo:   repo,
		secret: secret,
		expiry: expiry,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

func (ac *AuthController) issue(c *gin.Context, status int, message string, u *user.User) {
	accessToken, err := token.GenerateJWT(u.ID, u.Role, ac.secret, ac.expiry)
	if err != nil {
		responses.FromError(c, eris.Wrap(err, "access token generation failed"))
		return
	}
	responses.SendSuccess(c, status, message, AuthResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(ac.expiry / time.Second),
		User:        u.ToProfile(),
	})
}

// @Summary      Register a new user
// @Description  Create an account and return an access token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user  body  RegisterRequest  true  "User registration details"
// @Success      201   {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      400   {object} responses.ErrorResponse "Validation error"
// @Failure      409   {object} responses.ErrorResponse "Username or email already registered"
// @Router       /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(req.Email)

	if existing, err := ac.repo.FindByEmail(ctx, email); err != nil {
		responses.FromError(c, err)
		return
	} else if existing != nil {
		responses.SendError(c, http.StatusConflict, "User with this email already exists")
		return
	}
	if existing, err := ac.repo.FindByUsername(ctx, req.Username); err != nil {
		responses.FromError(c, err)
		return
	} else if existing != nil {
		responses.SendError(c, http.StatusConflict, "User with this username already exists")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		responses.FromError(c, eris.Wrap(err, "error hashing password"))
		return
	}

	newUser := &user.User{
		Username: req.Username,
		Email:    email,
		Password: hashedPassword,
		Phone:    req.Phone,
		City:     req.City,
	}
	if err := ac.repo.Create(ctx, newUser); err != nil {
		responses.FromError(c, err)
		return
	}

	ac.logger.Info().Uint("user_id", newUser.ID).Str("username", newUser.Username).Msg("user registered")
	ac.issue(c, http.StatusCreated, "User registered successfully", newUser)
}

// @Summary      Login user
// @Description  Authenticate with email or username and password.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Login credentials"
// @Success      200   {object} responses.SuccessResponse{data=AuthResponse}
// @Failure      400   {object} responses.ErrorResponse "Invalid input"
// @Failure      401   {object} responses.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationError(c, err)
		return
	}

	ctx := c.Request.Context()
	var found *user.User
	var err error
	if strings.Contains(req.LoginIdentifier, "@") {
		found, err = ac.repo.FindByEmail(ctx, strings.ToLower(req.LoginIdentifier))
	} else {
		found, err = ac.repo.FindByUsername(ctx, req.LoginIdentifier)
	}
	if err != nil {
		responses.FromError(c, err)
		return
	}

	// Unknown user and wrong password answer the same way.
	if found == nil || !utils.CheckPassword(found.Password, req.Password) {
		responses.Unauthorized(c, "Invalid credentials")
		return
	}

	ac.issue(c, http.StatusOK, "Login successful", found)
}
