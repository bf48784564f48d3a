package draft

import "context"

// Wizard kinds with persisted drafts.
const (
	KindSchoolRegister  = "school-register"
	KindDonationRequest = "donation-request"
)

// Draft is the saved state of one in-progress wizard: the step the user is
// on and every field entered so far. Nothing reaches the backend until the
// final submit.
type Draft struct {
	BrowserID string
	Kind      string
	Step      int
	Fields    map[string]string
}

// StagedFile is an accepted upload waiting for the final submission.
type StagedFile struct {
	ID          string
	BrowserID   string
	Kind        string
	Field       string
	Name        string
	ContentType string
	Size        int64
	Path        string
}

// Store persists wizard drafts and their staged files.
type Store interface {
	GetDraft(ctx context.Context, browserID, kind string) (Draft, bool, error)
	SaveDraft(ctx context.Context, d Draft) error
	DeleteDraft(ctx context.Context, browserID, kind string) error

	AddFile(ctx context.Context, f StagedFile, data []byte) error
	ListFiles(ctx context.Context, browserID, kind string) ([]StagedFile, error)
	RemoveFile(ctx context.Context, browserID, fileID string) error
	ReadFileData(f StagedFile) ([]byte, error)
}
