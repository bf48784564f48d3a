package session

import (
	"encoding/json"
	"errors"
	"strings"
)

// Actor roles. A browser may hold a record for each role at the same time;
// token resolution always walks TokenPriority in order.
const (
	RoleDonor  = "donor"
	RoleSchool = "school"
	RoleAdmin  = "admin"
)

// TokenPriority is the fixed order in which stored records are consulted
// when resolving a bearer token for an outgoing backend request.
var TokenPriority = []string{RoleAdmin, RoleSchool, RoleDonor}

// Domain errors
var (
	ErrUnknownRole = errors.New("unknown session role")
	ErrNoToken     = errors.New("session record has no token")
)

// Record is a persisted login for one role: the backend bearer token plus
// the profile fields the backend returned. Raw keeps the backend's login
// response verbatim so profile fields survive round-trips unchanged.
type Record struct {
	Role     string
	Token    string
	FullName string
	Email    string
	Raw      json.RawMessage
}

// profilePayload is the subset of the backend login response we parse.
type profilePayload struct {
	Token    string `json:"token"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// IsValidRole reports whether role names a known actor kind.
func IsValidRole(role string) bool {
	return role == RoleDonor || role == RoleSchool || role == RoleAdmin
}

// StorageKey returns the persisted-state key for a role.
// These match the keys the backend ecosystem uses (donorInfo, schoolInfo,
// adminInfo), so exported session dumps stay interoperable.
func StorageKey(role string) string {
	switch role {
	case RoleDonor:
		return "donorInfo"
	case RoleSchool:
		return "schoolInfo"
	case RoleAdmin:
		return "adminInfo"
	}
	return ""
}

// LoginRoute returns the login page for a role.
func LoginRoute(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin-login"
	case RoleSchool:
		return "/school-login"
	}
	return "/donor-login"
}

// HomeRoute returns where a role lands after a successful login.
func HomeRoute(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleSchool:
		return "/school/dashboard"
	}
	return "/"
}

// ClassifyPath maps a page path to the role whose session an auth failure
// on that page should invalidate. Admin and school areas are recognised by
// prefix; the root, donor pages and the /my-... views belong to donors, as
// does anything unrecognised.
func ClassifyPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/admin"):
		return RoleAdmin
	case strings.HasPrefix(path, "/school"):
		return RoleSchool
	}
	return RoleDonor
}

// NewRecord builds a Record for role from the backend's login response body.
// PRE: raw is the verbatim response JSON
// POST: returns a Record with a non-empty token, or an error
func NewRecord(role string, raw []byte) (Record, error) {
	if !IsValidRole(role) {
		return Record{}, ErrUnknownRole
	}
	var p profilePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Record{}, err
	}
	if p.Token == "" {
		return Record{}, ErrNoToken
	}
	return Record{
		Role:     role,
		Token:    p.Token,
		FullName: p.FullName,
		Email:    p.Email,
		Raw:      json.RawMessage(raw),
	}, nil
}

// Parse rebuilds a Record from a stored raw value. A record that is not
// valid JSON, or parses without a token, is unusable and should be deleted
// by the caller.
func Parse(role string, raw []byte) (Record, error) {
	return NewRecord(role, raw)
}
