package orchestrators

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/forms"
	"edusahasra/internal/domain/session"
)

// DonorRegisterAPI defines the backend calls needed by RegisterDonor.
type DonorRegisterAPI interface {
	RegisterDonor(ctx context.Context, reg apiclient.DonorRegistration) (json.RawMessage, error)
}

// RegisterDonorInput carries the donor signup form fields.
type RegisterDonorInput struct {
	Fields map[string]string
}

// RegisterDonorDeps holds dependencies for RegisterDonor.
type RegisterDonorDeps struct {
	API      DonorRegisterAPI
	Sessions SessionWriter
	Log      zerolog.Logger
}

// ExecuteRegisterDonor validates the signup form, creates the donor
// account, and logs the donor in with the backend's verbatim response.
// POST: on success a donor session record exists for this browser
func ExecuteRegisterDonor(ctx context.Context, input RegisterDonorInput, deps RegisterDonorDeps) (LoginResult, forms.Errors, error) {
	if errs := forms.CheckDonorRegistration(input.Fields); errs != nil {
		return LoginResult{}, errs, nil
	}

	raw, err := deps.API.RegisterDonor(ctx, apiclient.DonorRegistration{
		FullName: input.Fields["fullName"],
		Email:    input.Fields["email"],
		Phone:    input.Fields["phone"],
		Password: input.Fields["password"],
	})
	if err != nil {
		return LoginResult{}, nil, err
	}

	rec, err := session.NewRecord(session.RoleDonor, raw)
	if err != nil {
		deps.Log.Error().Err(err).Msg("register_bad_response")
		return LoginResult{}, nil, err
	}
	if err := deps.Sessions.Set(ctx, rec); err != nil {
		return LoginResult{}, nil, err
	}

	deps.Log.Info().Str("email", input.Fields["email"]).Msg("donor_registered")
	return LoginResult{Record: rec, HomePath: session.HomeRoute(session.RoleDonor)}, nil, nil
}
