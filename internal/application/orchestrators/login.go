package orchestrators

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"edusahasra/internal/apiclient"
	"edusahasra/internal/domain/session"
)

// LoginAPI defines the backend calls needed by Login.
type LoginAPI interface {
	Login(ctx context.Context, role, email, password string) (json.RawMessage, error)
}

// SessionWriter persists session records for the current browser.
type SessionWriter interface {
	Set(ctx context.Context, rec session.Record) error
	Clear(ctx context.Context, role string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Role     string
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Record   session.Record
	HomePath string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	API      LoginAPI
	Sessions SessionWriter
	Log      zerolog.Logger
}

var ErrInvalidCredentials = errors.New("invalid email or password")

// ExecuteLogin authenticates against the backend and stores the response
// body verbatim as this browser's session record for the role.
// PRE: Role is a known role
// POST: on success the record is persisted and HomePath is the role's landing page
// INVARIANT: the stored record is byte-identical to the backend response
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	raw, err := deps.API.Login(ctx, input.Role, input.Email, input.Password)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 401 {
			deps.Log.Info().Str("role", input.Role).Str("email", input.Email).Msg("login_failed")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	rec, err := session.NewRecord(input.Role, raw)
	if err != nil {
		deps.Log.Error().Err(err).Str("role", input.Role).Msg("login_bad_response")
		return LoginResult{}, err
	}
	if err := deps.Sessions.Set(ctx, rec); err != nil {
		return LoginResult{}, err
	}

	deps.Log.Info().Str("role", input.Role).Str("email", input.Email).Msg("login_success")
	return LoginResult{Record: rec, HomePath: session.HomeRoute(input.Role)}, nil
}

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	Role string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionWriter
	Log      zerolog.Logger
}

// ExecuteLogout clears the role's session record for this browser.
// POST: subsequent requests for the role are anonymous
func ExecuteLogout(ctx context.Context, input LogoutInput, deps LogoutDeps) (string, error) {
	if err := deps.Sessions.Clear(ctx, input.Role); err != nil {
		return "", err
	}
	deps.Log.Info().Str("role", input.Role).Msg("logout")
	return session.LoginRoute(input.Role), nil
}
