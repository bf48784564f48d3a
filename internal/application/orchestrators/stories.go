package orchestrators

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"edusahasra/internal/apiclient"
	"edusahasra/internal/domain/story"
	"edusahasra/internal/domain/upload"
)

// StoryAPI defines the backend calls needed by the story orchestrators.
type StoryAPI interface {
	CreateStory(ctx context.Context, fields map[string]string, images []apiclient.UploadFile) (string, error)
	GetStory(ctx context.Context, id string) (story.Story, error)
	ModerateStory(ctx context.Context, id, status string) (story.Story, string, error)
}

// SubmitStoryInput carries a school's impact story submission.
type SubmitStoryInput struct {
	Title  string
	Body   string // markdown
	Images []apiclient.UploadFile
}

// SubmitStoryDeps holds dependencies for SubmitStory.
type SubmitStoryDeps struct {
	API StoryAPI
	Log zerolog.Logger
}

var (
	ErrStoryIncomplete = errors.New("a story needs a title and a body")
	ErrNotModeratable  = errors.New("this story is not awaiting moderation")
)

// ExecuteSubmitStory validates attached images and submits the story for
// moderation.
// POST: every submitted image passed size and type checks
func ExecuteSubmitStory(ctx context.Context, input SubmitStoryInput, deps SubmitStoryDeps) (string, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Body) == "" {
		return "", ErrStoryIncomplete
	}
	for _, img := range input.Images {
		if err := upload.Validate(upload.KindImage, img.Name, img.ContentType, int64(len(img.Data))); err != nil {
			return "", err
		}
	}

	msg, err := deps.API.CreateStory(ctx, map[string]string{
		"title": input.Title,
		"body":  input.Body,
	}, input.Images)
	if err != nil {
		return "", err
	}

	deps.Log.Info().Str("title", input.Title).Int("images", len(input.Images)).Msg("story_submitted")
	return msg, nil
}

// ModerateStoryInput carries the admin's moderation decision.
type ModerateStoryInput struct {
	StoryID string
	Status  string // story.StatusApproved or story.StatusRejected
}

// ExecuteModerateStory applies an admin's publish or reject decision to a
// pending story.
// PRE: the story's status is pending
func ExecuteModerateStory(ctx context.Context, input ModerateStoryInput, deps SubmitStoryDeps) (story.Story, string, error) {
	if input.Status != story.StatusApproved && input.Status != story.StatusRejected {
		return story.Story{}, "", ErrBadDecision
	}

	current, err := deps.API.GetStory(ctx, input.StoryID)
	if err != nil {
		return story.Story{}, "", err
	}
	if !current.CanApprove() && !current.CanReject() {
		return story.Story{}, "", ErrNotModeratable
	}

	updated, msg, err := deps.API.ModerateStory(ctx, input.StoryID, input.Status)
	if err != nil {
		return story.Story{}, "", err
	}

	deps.Log.Info().Str("story_id", input.StoryID).Str("decision", input.Status).Msg("story_moderated")
	return updated, msg, nil
}
