package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"edusahasra/internal/domain/session"
)

// loginPath returns the backend login endpoint for a role.
func loginPath(role string) string {
	switch role {
	case session.RoleAdmin:
		return "/api/admin/login"
	case session.RoleSchool:
		return "/api/schools/login"
	default:
		return "/api/donors/login"
	}
}

// Login authenticates one role and returns the backend's response body
// verbatim. Callers persist it unchanged so profile fields survive exactly
// as the backend sent them.
func (b *Bound) Login(ctx context.Context, role, email, password string) (json.RawMessage, error) {
	if !session.IsValidRole(role) {
		return nil, &APIError{Err: fmt.Errorf("login: %w", session.ErrUnknownRole)}
	}
	body := map[string]string{"email": email, "password": password}
	var raw json.RawMessage
	if err := b.sendJSON(ctx, http.MethodPost, loginPath(role), body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// DonorRegistration carries the donor sign-up fields.
type DonorRegistration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterDonor creates a donor account. The backend logs the donor in on
// success, so the verbatim response body doubles as a session record.
func (b *Bound) RegisterDonor(ctx context.Context, reg DonorRegistration) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := b.sendJSON(ctx, http.MethodPost, "/api/donors/register", reg, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// RegisterSchool submits the school-registration wizard as one multipart
// request: scalar fields plus the staged verification documents.
func (b *Bound) RegisterSchool(ctx context.Context, fields map[string]string, documents []UploadFile) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := b.sendMultipart(ctx, http.MethodPost, "/api/schools/register", fields, documents, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
