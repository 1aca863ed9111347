package snippets

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/PabloPavan/sniply_inject/internal"
	"github.com/PabloPavan/sniply_inject/internal/apperrors"
)

type Store interface {
	Create(ctx context.Context, s *Snippet) error
	GetByID(ctx context.Context, id string) (*Snippet, error)
	List(ctx context.Context, f SnippetFilter) ([]*Snippet, error)
	Update(ctx context.Context, s *Snippet) error
	SetActive(ctx context.Context, id string, active bool) error
	// ToggleActive flips the flag in one step and returns the new value.
	ToggleActive(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Service is the admin-facing side of the snippet store. Callers are
// expected to be authorized already.
type Service struct {
	Store       Store
	IDGenerator func() string
}

type ListInput struct {
	Active   *bool
	Location string
	CodeType string
}

var textPolicy = bluemonday.StrictPolicy()

// sanitizeText strips markup and surrounding whitespace from a plain-text field.
func sanitizeText(raw string) string {
	clean := textPolicy.Sanitize(strings.TrimSpace(raw))
	return strings.TrimSpace(html.UnescapeString(clean))
}

// fromRequest applies the permissive defaults: unknown enums are coerced,
// a missing priority becomes DefaultPriority.
func fromRequest(id string, req CreateSnippetRequest) *Snippet {
	priority := DefaultPriority
	if req.Priority != nil {
		priority = *req.Priority
	}
	return &Snippet{
		ID:         id,
		Name:       sanitizeText(req.Name),
		Code:       req.Code,
		CodeType:   ParseCodeType(req.CodeType),
		Location:   ParseLocation(req.Location),
		CustomHook: sanitizeText(req.CustomHook),
		Priority:   priority,
		Active:     req.Active,
	}
}

func (s *Service) Create(ctx context.Context, req CreateSnippetRequest) (*Snippet, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}

	idGen := s.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return "snp_" + internal.RandomHex(12)
		}
	}

	snippet := fromRequest(idGen(), req)
	if snippet.Name == "" {
		return nil, apperrors.Invalid("name is required")
	}

	if err := s.Store.Create(ctx, snippet); err != nil {
		if IsDuplicateID(err) {
			return nil, apperrors.New(apperrors.KindConflict, "snippet already exists")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to create snippet", err)
	}
	return snippet, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Snippet, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Invalid("id is required")
	}

	snippet, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperrors.NotFound("snippet")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load snippet", err)
	}
	return snippet, nil
}

func (s *Service) List(ctx context.Context, input ListInput) ([]*Snippet, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}

	filter := SnippetFilter{Active: input.Active}
	if loc := strings.TrimSpace(input.Location); loc != "" {
		filter.Location = ParseLocation(loc)
	}
	if ct := strings.TrimSpace(input.CodeType); ct != "" {
		filter.CodeType = ParseCodeType(ct)
	}

	list, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to list snippets", err)
	}
	return list, nil
}

func (s *Service) ListByLocation(ctx context.Context, location string) ([]*Snippet, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperrors.Invalid("location is required")
	}
	return s.List(ctx, ListInput{Location: location})
}

// Update replaces every field of the snippet; omitted fields get their defaults.
func (s *Service) Update(ctx context.Context, id string, req CreateSnippetRequest) (*Snippet, error) {
	if s.Store == nil {
		return nil, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.Invalid("id is required")
	}

	snippet := fromRequest(id, req)
	if snippet.Name == "" {
		return nil, apperrors.Invalid("name is required")
	}

	if err := s.Store.Update(ctx, snippet); err != nil {
		if IsNotFound(err) {
			return nil, apperrors.NotFound("snippet")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to update snippet", err)
	}
	return snippet, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Invalid("id is required")
	}

	if err := s.Store.SetActive(ctx, id, active); err != nil {
		if IsNotFound(err) {
			return apperrors.NotFound("snippet")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to update snippet status", err)
	}
	return nil
}

// Toggle flips the active flag and returns the new state.
func (s *Service) Toggle(ctx context.Context, id string) (bool, error) {
	if s.Store == nil {
		return false, apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, apperrors.Invalid("id is required")
	}

	active, err := s.Store.ToggleActive(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return false, apperrors.NotFound("snippet")
		}
		return false, apperrors.Wrap(apperrors.KindInternal, "failed to toggle snippet", err)
	}
	return active, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if s.Store == nil {
		return apperrors.New(apperrors.KindInternal, "snippets store not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.Invalid("id is required")
	}

	if err := s.Store.Delete(ctx, id); err != nil {
		if IsNotFound(err) {
			return apperrors.NotFound("snippet")
		}
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete snippet", err)
	}
	return nil
}
