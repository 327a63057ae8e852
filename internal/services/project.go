package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dcode-ide/apiserver/internal/languages"
	"github.com/dcode-ide/apiserver/internal/logging"
	"github.com/dcode-ide/apiserver/internal/mq"
	"github.com/dcode-ide/apiserver/internal/store"
	"github.com/dcode-ide/apiserver/types"
	"github.com/google/uuid"
)

// ProjectRepository defines persistence operations for projects. Every
// mutating call is scoped by owner.
type ProjectRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]types.Project, error)
	Get(ctx context.Context, id, ownerID string) (types.Project, error)
	GetByID(ctx context.Context, id string) (types.Project, error)
	Create(ctx context.Context, project types.Project) (types.Project, error)
	UpdateCode(ctx context.Context, id, ownerID, code string) error
	UpdateName(ctx context.Context, id, ownerID, name string) error
	Delete(ctx context.Context, id, ownerID string) error
}

// CodeMirror keeps an external copy of project sources.
type CodeMirror interface {
	Save(ctx context.Context, project types.Project) error
	Remove(ctx context.Context, project types.Project) error
}

// EventPublisher announces project lifecycle changes.
type EventPublisher interface {
	PublishProjectEvent(ctx context.Context, ev mq.ProjectEvent) (string, error)
}

// ProjectService encapsulates project use-cases for an authenticated user.
type ProjectService struct {
	repo   ProjectRepository
	mirror CodeMirror
	events EventPublisher
	logger logging.Logger
}

// ProjectOption configures optional collaborators of a ProjectService.
type ProjectOption func(*ProjectService)

// WithCodeMirror copies every saved project into mirror.
func WithCodeMirror(mirror CodeMirror) ProjectOption {
	return func(s *ProjectService) { s.mirror = mirror }
}

// WithEvents publishes lifecycle events through events.
func WithEvents(events EventPublisher) ProjectOption {
	return func(s *ProjectService) { s.events = events }
}

func NewProjectService(repo ProjectRepository, logger logging.Logger, opts ...ProjectOption) *ProjectService {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &ProjectService{repo: repo, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new project seeded with the starter code of language.
func (s *ProjectService) Create(ctx context.Context, user types.User, name, language, version string) (types.Project, error) {
	name = strings.TrimSpace(name)
	language = strings.TrimSpace(language)
	if name == "" || language == "" {
		return types.Project{}, fmt.Errorf("%w: name and projLanguage are required", ErrValidation)
	}

	project, err := s.repo.Create(ctx, types.Project{
		ID:       uuid.NewString(),
		Name:     name,
		Language: language,
		Code:     languages.StarterCode(language),
		OwnerID:  user.ID,
		Version:  strings.TrimSpace(version),
	})
	if err != nil {
		return types.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.mirrorSave(ctx, project)
	s.publish(ctx, mq.ProjectCreated, project)
	return project, nil
}

// SaveCode overwrites the code of one of the user's projects.
func (s *ProjectService) SaveCode(ctx context.Context, user types.User, projectID, code string) error {
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: projectId is required", ErrValidation)
	}
	if err := s.repo.UpdateCode(ctx, projectID, user.ID, code); err != nil {
		return err
	}

	if s.mirror != nil || s.events != nil {
		if project, err := s.repo.Get(ctx, projectID, user.ID); err == nil {
			s.mirrorSave(ctx, project)
			s.publish(ctx, mq.ProjectSaved, project)
		}
	}
	return nil
}

// List returns the user's projects, newest first.
func (s *ProjectService) List(ctx context.Context, user types.User) ([]types.Project, error) {
	projects, err := s.repo.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	if projects == nil {
		projects = []types.Project{}
	}
	return projects, nil
}

// Get returns one of the user's projects.
func (s *ProjectService) Get(ctx context.Context, user types.User, projectID string) (types.Project, error) {
	if strings.TrimSpace(projectID) == "" {
		return types.Project{}, fmt.Errorf("%w: projectId is required", ErrValidation)
	}
	return s.repo.Get(ctx, projectID, user.ID)
}

// Delete removes one of the user's projects. Deleting a project that does
// not exist, or belongs to someone else, succeeds without effect.
func (s *ProjectService) Delete(ctx context.Context, user types.User, projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return fmt.Errorf("%w: projectId is required", ErrValidation)
	}

	project, err := s.repo.Get(ctx, projectID, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	if err := s.repo.Delete(ctx, projectID, user.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete project: %w", err)
	}

	if s.mirror != nil {
		if err := s.mirror.Remove(ctx, project); err != nil {
			s.logger.Warn("code mirror remove failed", "project", project.ID, "err", err)
		}
	}
	s.publish(ctx, mq.ProjectDeleted, project)
	return nil
}

// Rename changes the display name of one of the user's projects.
func (s *ProjectService) Rename(ctx context.Context, user types.User, projectID, name string) error {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(projectID) == "" || name == "" {
		return fmt.Errorf("%w: projectId and name are required", ErrValidation)
	}
	if err := s.repo.UpdateName(ctx, projectID, user.ID, name); err != nil {
		return err
	}

	if s.events != nil {
		if project, err := s.repo.Get(ctx, projectID, user.ID); err == nil {
			s.publish(ctx, mq.ProjectRenamed, project)
		}
	}
	return nil
}

// Language returns the language of any project by id. Used to fill in the
// language of an AI request, so ownership is not checked.
func (s *ProjectService) Language(ctx context.Context, projectID string) (string, error) {
	project, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	return project.Language, nil
}

func (s *ProjectService) mirrorSave(ctx context.Context, project types.Project) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Save(ctx, project); err != nil {
		s.logger.Warn("code mirror save failed", "project", project.ID, "err", err)
	}
}

func (s *ProjectService) publish(ctx context.Context, t mq.EventType, project types.Project) {
	if s.events == nil {
		return
	}
	if _, err := s.events.PublishProjectEvent(ctx, mq.NewProjectEvent(t, project)); err != nil {
		s.logger.Warn("project event publish failed", "type", t, "project", project.ID, "err", err)
	}
}
