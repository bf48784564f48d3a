package orchestrators

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"edusahasra/internal/adapters/storage/draft"
	"edusahasra/internal/apiclient"
	"edusahasra/internal/application/forms"
)

// SchoolRegisterAPI defines the backend calls needed by RegisterSchool.
type SchoolRegisterAPI interface {
	RegisterSchool(ctx context.Context, fields map[string]string, documents []apiclient.UploadFile) (string, error)
}

// DraftReader loads and clears wizard drafts with their staged files.
type DraftReader interface {
	GetDraft(ctx context.Context, browserID, kind string) (draft.Draft, bool, error)
	ListFiles(ctx context.Context, browserID, kind string) ([]draft.StagedFile, error)
	ReadFileData(f draft.StagedFile) ([]byte, error)
	DeleteDraft(ctx context.Context, browserID, kind string) error
}

// RegisterSchoolInput identifies the browser whose draft is submitted.
type RegisterSchoolInput struct {
	BrowserID string
}

// RegisterSchoolDeps holds dependencies for RegisterSchool.
type RegisterSchoolDeps struct {
	API    SchoolRegisterAPI
	Drafts DraftReader
	Log    zerolog.Logger
}

var ErrNoDraft = errors.New("no draft in progress")

// ExecuteRegisterSchool re-validates the whole wizard draft, submits it
// with the staged documents as one multipart request, and clears the
// draft on success.
// PRE: the browser completed all wizard steps
// POST: on success the draft and its staged files are gone
// INVARIANT: field errors leave the draft untouched
func ExecuteRegisterSchool(ctx context.Context, input RegisterSchoolInput, deps RegisterSchoolDeps) (string, forms.Errors, error) {
	d, ok, err := deps.Drafts.GetDraft(ctx, input.BrowserID, draft.KindSchoolRegister)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrNoDraft
	}

	files, err := deps.Drafts.ListFiles(ctx, input.BrowserID, draft.KindSchoolRegister)
	if err != nil {
		return "", nil, err
	}
	fields := d.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	fields["documentCount"] = strconv.Itoa(len(files))

	if errs := forms.SchoolRegistration().CheckAll(fields); errs != nil {
		return "", errs, nil
	}

	uploads := make([]apiclient.UploadFile, 0, len(files))
	for _, f := range files {
		data, err := deps.Drafts.ReadFileData(f)
		if err != nil {
			return "", nil, err
		}
		uploads = append(uploads, apiclient.UploadFile{
			Field:       "documents",
			Name:        f.Name,
			ContentType: f.ContentType,
			Data:        data,
		})
	}

	// the synthetic gate field never goes over the wire
	delete(fields, "documentCount")
	delete(fields, "confirmPassword")

	msg, err := deps.API.RegisterSchool(ctx, fields, uploads)
	if err != nil {
		return "", nil, err
	}

	if err := deps.Drafts.DeleteDraft(ctx, input.BrowserID, draft.KindSchoolRegister); err != nil {
		deps.Log.Error().Err(err).Msg("draft_cleanup_failed")
	}
	deps.Log.Info().Str("school", fields["schoolName"]).Int("documents", len(uploads)).Msg("school_register_submitted")
	return msg, nil, nil
}
