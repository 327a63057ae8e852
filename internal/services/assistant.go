package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dcode-ide/apiserver/internal/logging"
)

// Completer sends a prompt to a language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LanguageLookup resolves the language of a project by id.
type LanguageLookup interface {
	Language(ctx context.Context, projectID string) (string, error)
}

// AnalyzeRequest is a question about a piece of code. At least one of Code
// and Question must be set.
type AnalyzeRequest struct {
	Code      string
	Question  string
	Language  string
	ProjectID string
}

// AssistantService builds prompts for code questions and relays them to
// the model.
type AssistantService struct {
	completer Completer
	projects  LanguageLookup
	logger    logging.Logger
}

func NewAssistantService(completer Completer, projects LanguageLookup, logger logging.Logger) *AssistantService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &AssistantService{completer: completer, projects: projects, logger: logger}
}

// Analyze answers req through the model. Upstream failures are returned
// as classified by the completer.
func (s *AssistantService) Analyze(ctx context.Context, req AnalyzeRequest) (string, error) {
	if strings.TrimSpace(req.Code) == "" && strings.TrimSpace(req.Question) == "" {
		return "", fmt.Errorf("%w: either code or question is required", ErrValidation)
	}

	language := strings.TrimSpace(req.Language)
	if language == "" && strings.TrimSpace(req.ProjectID) != "" && s.projects != nil {
		found, err := s.projects.Language(ctx, req.ProjectID)
		if err != nil {
			s.logger.Warn("could not resolve project language", "project", req.ProjectID, "err", err)
		} else {
			language = found
		}
	}

	return s.completer.Complete(ctx, BuildPrompt(req.Code, req.Question, language))
}
