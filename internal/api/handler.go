package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ataleek/portal/internal/service"
	"github.com/ataleek/portal/pkg/logger"
)

const (
	sessionCookieName = "portal_session"
	stateCookieName   = "oauth_state"
)

type Handler struct {
	webhooks *service.WebhookService
	portal   *service.PortalService
	auth     *service.AuthService

	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithWebhookService(webhooks *service.WebhookService) *Handler {
	h.webhooks = webhooks
	return h
}

func (h *Handler) WithPortalService(portal *service.PortalService) *Handler {
	h.portal = portal
	return h
}

func (h *Handler) WithAuthService(auth *service.AuthService) *Handler {
	h.auth = auth
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	e.POST("/webhook", h.Webhook)

	e.GET("/auth/login", h.Login)
	e.GET("/auth/callback", h.Callback)

	e.GET("/projects", h.ListProjects)
	e.GET("/search", h.Search)
	e.GET("/users/:username", h.UserProfile)

	secured := e.Group("", SessionMiddleware(h.auth))

	secured.GET("/auth/logout", h.Logout)
	secured.POST("/projects", h.AddProject)
	secured.POST("/solutions", h.SubmitSolution)
	secured.POST("/mentors/apply", h.ApplyForMentorship)
}

func (h *Handler) Login(e echo.Context) error {
	state := uuid.NewString()

	e.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return e.Redirect(http.StatusFound, h.auth.LoginURL(state))
}

func (h *Handler) Callback(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	stateCookie, err := e.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != e.QueryParam("state") {
		l.Warn("oauth state mismatch")
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "oauth state mismatch"))
	}

	code := e.QueryParam("code")
	if code == "" {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "missing authorization code"))
	}

	session, serviceErr := h.auth.CompleteLogin(e.Request().Context(), code)
	if serviceErr != nil {
		l.Error("login failed", zap.Any("error", serviceErr))
		return h.transportError(e, serviceErr)
	}

	e.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Clear the one-shot state cookie.
	e.SetCookie(&http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return e.Redirect(http.StatusFound, "/projects")
}

func (h *Handler) Logout(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	user := UserFromContext(e)

	if err := h.auth.Logout(e.Request().Context(), user.ID); err != nil {
		l.Error("logout failed", zap.Int64("user_id", user.ID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	e.SetCookie(&http.Cookie{
		Name:   sessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) ListProjects(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projects, err := h.portal.ListProjects(e.Request().Context())
	if err != nil {
		l.Error("failed to list projects", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, projects)
}

func (h *Handler) AddProject(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		RepositoryURL string `json:"repository_url" validate:"required,url"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("submitting project", zap.String("repository_url", req.RepositoryURL))

	if err := h.portal.AddProject(e.Request().Context(), UserFromContext(e), req.RepositoryURL); err != nil {
		l.Error("failed to submit project", zap.String("repository_url", req.RepositoryURL), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusAccepted, map[string]string{
		"message": "your project's repository is under review, we will add it once it is verified",
	})
}

func (h *Handler) SubmitSolution(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		RepositoryURL string `json:"repository_url" validate:"required,url"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("submitting solution", zap.String("repository_url", req.RepositoryURL))

	reviewURL, err := h.portal.SubmitSolution(e.Request().Context(), UserFromContext(e), req.RepositoryURL)
	if err != nil {
		l.Error("failed to submit solution", zap.String("repository_url", req.RepositoryURL), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusAccepted, map[string]string{"review_url": reviewURL})
}

func (h *Handler) ApplyForMentorship(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	application, err := h.portal.ApplyForMentorship(e.Request().Context(), UserFromContext(e))
	if err != nil {
		if err.Code == service.ErrorCodeAlreadyApplied {
			return e.JSON(http.StatusConflict, struct {
				Error       *service.Error `json:"error"`
				Application any            `json:"application"`
			}{Error: err, Application: application})
		}
		l.Error("failed to apply for mentorship", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, application)
}

func (h *Handler) Search(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	query := e.QueryParam("q")
	if query == "" {
		return h.transportError(e, service.NewError(service.ErrorCodeInvalidBody, "query parameter q is required"))
	}

	result, err := h.portal.Search(e.Request().Context(), query)
	if err != nil {
		l.Error("search failed", zap.String("query", query), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, result)
}

func (h *Handler) UserProfile(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	username := e.Param("username")

	profile, err := h.portal.UserProfile(e.Request().Context(), username)
	if err != nil {
		l.Error("failed to load profile", zap.String("username", username), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, profile)
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func errorResponse(err *service.Error) any {
	return struct {
		Error *service.Error `json:"error"`
	}{Error: err}
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := errorResponse(err)

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeInvalidBody:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeUnauthorized:
		return e.JSON(http.StatusUnauthorized, response)
	case service.ErrorCodeAlreadyApplied:
		return e.JSON(http.StatusConflict, response)
	case service.ErrorCodeProjectIncomplete:
		return e.JSON(http.StatusUnprocessableEntity, response)
	case service.ErrorCodeUpstream:
		return e.JSON(http.StatusBadGateway, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
