package authkit

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the JSON auth endpoints on the given router.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login.post")

	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register.post")

	app.Post(controller.Routes.Logout, controller.LogoutPost).
		SetName("auth.logout.post")

	app.Get(controller.Routes.Session, controller.SessionShow).
		SetName("auth.session.get")
}

type AuthControllerRoutes struct {
	Login    string
	Logout   string
	Register string
	Session  string
}

// AuthController is a thin JSON adapter between HTTP and the Container. The
// real state consumers subscribe to the Store; these endpoints exist for
// clients that poll instead.
type AuthController struct {
	Logger    Logger
	Container *Container
	Routes    *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/login",
			Logout:   "/logout",
			Register: "/register",
			Session:  "/session",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Container == nil {
		panic("Missing Container in auth controller...")
	}

	return c
}

// WithControllerContainer sets the container the endpoints drive.
func WithControllerContainer(container *Container) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Container = container
		return c
	}
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// RegisterRequest payload
type RegisterRequest struct {
	Email     string `form:"email" json:"email"`
	Password  string `form:"password" json:"password"`
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(8, 128),
		),
		validation.Field(&r.FirstName, validation.Required),
		validation.Field(&r.LastName, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"validation": err.Error(),
		})
	}

	if err := a.Container.Login(ctx.Context(), payload.Email, payload.Password); err != nil {
		a.Logger.Info("login rejected", "email", payload.Email)
		return ctx.JSON(router.StatusUnauthorized, map[string]any{
			"error": err.Error(),
		})
	}

	// authentication completes asynchronously; report the pending state
	return ctx.JSON(router.StatusOK, a.stateBody())
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": "malformed request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"validation": err.Error(),
		})
	}

	if err := a.Container.Register(ctx.Context(), payload.Email, payload.Password, payload.FirstName, payload.LastName); err != nil {
		a.Logger.Error("registration failed", "email", payload.Email, "error", err)
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"error": err.Error(),
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": MsgRegistrationSuccess,
	})
}

func (a *AuthController) LogoutPost(ctx router.Context) error {
	if err := a.Container.Logout(ctx.Context()); err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]any{
			"error": MsgLogoutFailure,
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"message": MsgLogoutSuccess,
	})
}

func (a *AuthController) SessionShow(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, a.stateBody())
}

func (a *AuthController) stateBody() map[string]any {
	state := a.Container.Store().State()
	return map[string]any{
		"user":             state.User,
		"is_authenticated": state.IsAuthenticated,
		"is_loading":       state.IsLoading,
		"error":            state.Error,
	}
}
