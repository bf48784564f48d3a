package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"edusahasra/internal/domain/story"
)

// ListStories fetches published impact stories as a bare array; the
// stories page filters and paginates the snapshot locally.
func (b *Bound) ListStories(ctx context.Context, limit int) ([]story.Story, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var stories []story.Story
	if err := b.getJSON(ctx, "/api/stories", params, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// ListPendingStories fetches stories awaiting moderation (admin).
func (b *Bound) ListPendingStories(ctx context.Context) ([]story.Story, error) {
	params := url.Values{}
	params.Set("status", story.StatusPending)
	var stories []story.Story
	if err := b.getJSON(ctx, "/api/admin/stories", params, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// GetStory fetches one impact story by id.
func (b *Bound) GetStory(ctx context.Context, id string) (story.Story, error) {
	var s story.Story
	if err := b.getJSON(ctx, "/api/stories/"+url.PathEscape(id), nil, &s); err != nil {
		return story.Story{}, err
	}
	return s, nil
}

// CreateStory submits a school's impact story with its images as one
// multipart request.
func (b *Bound) CreateStory(ctx context.Context, fields map[string]string, images []UploadFile) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := b.sendMultipart(ctx, http.MethodPost, "/api/stories", fields, images, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ModerateStory applies the admin approve/reject decision to a story.
func (b *Bound) ModerateStory(ctx context.Context, id, status string) (story.Story, string, error) {
	body := map[string]string{"status": status}
	var resp struct {
		Story   story.Story `json:"story"`
		Message string      `json:"message"`
	}
	err := b.sendJSON(ctx, http.MethodPatch, "/api/admin/stories/"+url.PathEscape(id), body, &resp)
	if err != nil {
		return story.Story{}, "", err
	}
	return resp.Story, resp.Message, nil
}
