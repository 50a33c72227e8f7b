package auth

import (
	"context"
	stderrors "errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// GetRouterSession pulls the validated session out of the router context.
// The JWT middleware stores claims under the configured context key.
func GetRouterSession(c router.Context, key string) (*SessionObject, error) {
	raw := c.Locals(key)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if !ok {
		return nil, ErrUnableToDecodeSession
	}

	return sessionFromAuthClaims(claims)
}

// AuthControllerRoutes are the endpoint paths for the JSON auth API.
type AuthControllerRoutes struct {
	Signup      string
	Signin      string
	Signout     string
	Me          string
	VerifyToken string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Repo         RepositoryManager
	Routes       *AuthControllerRoutes
	Auther       HTTPAuthenticator
	Config       Config
	Activity     ActivitySink
	ErrorHandler router.ErrorHandler
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:      "/auth/signup",
			Signin:      "/auth/signin",
			Signout:     "/auth/signout",
			Me:          "/auth/me",
			VerifyToken: "/auth/verify-token",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTPAuthenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	if c.ErrorHandler == nil {
		c.ErrorHandler = c.respondError
	}

	return c
}

func (a *AuthController) WithLogger(l Logger) *AuthController {
	if l != nil {
		a.Logger = l
	}
	return a
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	protected := controller.Auther.ProtectedRoute(
		controller.Config,
		controller.Auther.MakeClientRouteAuthErrorHandler(false),
	)

	app.Post(controller.Routes.Signup, controller.SignupPost).
		SetName("auth.signup")

	app.Post(controller.Routes.Signin, controller.SigninPost).
		SetName("auth.signin")

	app.Post(controller.Routes.Signout, controller.SignoutPost).
		SetName("auth.signout")

	app.Post(controller.Routes.VerifyToken, controller.VerifyTokenPost).
		SetName("auth.verify-token")

	app.Get(controller.Routes.Me, protected(controller.MeGet)).
		SetName("auth.me")
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// SignupRequest is the registration payload
type SignupRequest struct {
	Email    string `form:"email" json:"email"`
	FullName string `form:"full_name" json:"full_name"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

// SignupPost registers the account and signs the new user in, responding with
// the token and the public user record.
func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signup parse payload", "error", err)
		return a.respondValidation(ctx, map[string]string{"body": "failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signup validate payload", "error", err)
		return a.respondValidation(ctx, FormatValidationErrorToMap(err))
	}

	var created *User
	registerUser := NewRegisterUserHandler(a.Repo).WithActivitySink(a.Activity)
	registerUser.OnResponse = func(_ context.Context, u *User) error {
		created = u
		return nil
	}

	req := RegisterUserMessage{
		Email:    payload.Email,
		FullName: payload.FullName,
		Password: payload.Password,
	}

	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("signup register user", "error", err)
		return a.respondError(ctx, err)
	}

	token, err := a.Auther.Login(ctx, LoginRequest{
		Identifier: payload.Email,
		Password:   payload.Password,
	})
	if err != nil {
		a.Logger.Error("signup auto login", "error", err)
		return a.respondError(ctx, err)
	}

	if created == nil {
		created, err = a.Repo.Users().GetByIdentifier(ctx.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
		if err != nil {
			return a.respondError(ctx, err)
		}
	}

	if a.Debug {
		a.Logger.Debug("signup created user %s", print.MaybePrettyJSON(created.Public()))
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"success": true,
		"data": map[string]any{
			"token": token,
			"user":  created.Public(),
		},
	})
}

// SigninPost verifies credentials and responds with a fresh token.
func (a *AuthController) SigninPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("signin parse payload", "error", err)
		return a.respondValidation(ctx, map[string]string{"body": "failed to parse request body"})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("signin validate payload", "error", err)
		return a.respondValidation(ctx, FormatValidationErrorToMap(err))
	}

	token, err := a.Auther.Login(ctx, *payload)
	if err != nil {
		return a.respondError(ctx, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), payload.Identifier)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"token": token,
			"user":  user.Public(),
		},
	})
}

// MeGet returns the account behind the validated token. The record is
// re-fetched so a stale token for a deleted account comes back 401.
func (a *AuthController) MeGet(ctx router.Context) error {
	session, err := GetRouterSession(ctx, a.Config.GetContextKey())
	if err != nil {
		return a.respondError(ctx, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), session.GetUserID())
	if err != nil {
		a.Logger.Error("me lookup failed", "error", err, "user_id", session.GetUserID())
		return a.respondError(ctx, ErrInvalidCredentials)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"user": user.Public(),
		},
	})
}

// SignoutPost acknowledges the sign out. Tokens are not revocable server
// side, clearing local state is the client's job, so this always succeeds.
func (a *AuthController) SignoutPost(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"signed_out": true,
		},
	})
}

// VerifyTokenPost checks a token without touching any other state. The token
// comes from the request body or the Authorization header.
func (a *AuthController) VerifyTokenPost(ctx router.Context) error {
	payload := new(VerifyTokenRequest)
	if err := ctx.Bind(payload); err != nil {
		payload.Token = ""
	}

	raw := payload.Token
	if raw == "" {
		raw = bearerToken(ctx)
	}

	if raw == "" {
		return a.respondError(ctx, ErrUnableToFindSession)
	}

	session, err := a.Auther.SessionFromToken(raw)
	if err != nil {
		return a.respondError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"valid":      true,
			"user_id":    session.GetUserID(),
			"email":      session.GetEmail(),
			"expires_at": session.GetExpiration(),
		},
	})
}

// VerifyTokenRequest carries an explicit token to check.
type VerifyTokenRequest struct {
	Token string `form:"token" json:"token"`
}

func bearerToken(ctx router.Context) string {
	header := ctx.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return ""
	}

	const scheme = "Bearer"
	if len(header) > len(scheme)+1 && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}

	return ""
}

func (a *AuthController) respondValidation(ctx router.Context, fields map[string]string) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"success":   false,
		"message":   "validation failed",
		"text_code": "validation_error",
		"fields":    fields,
	})
}

func (a *AuthController) respondError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		switch richErr.Category {
		case goerrors.CategoryAuth:
			status = router.StatusUnauthorized
		case goerrors.CategoryConflict:
			status = router.StatusConflict
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			status = router.StatusBadRequest
		case goerrors.CategoryNotFound:
			status = router.StatusNotFound
		default:
			status = router.StatusInternalServerError
		}
	}

	return ctx.JSON(status, map[string]any{
		"success":   false,
		"message":   richErr.Message,
		"text_code": richErr.TextCode,
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into field messages.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}
