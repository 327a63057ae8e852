package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dcode-ide/apiserver/internal/languages"
	"github.com/dcode-ide/apiserver/internal/runner"
	"github.com/dcode-ide/apiserver/types"
)

// CodeRunner executes a submission and reports its output.
type CodeRunner interface {
	Run(ctx context.Context, sub runner.Submission) (types.RunResult, error)
}

// RunService executes the code of a user's project.
type RunService struct {
	projects *ProjectService
	runner   CodeRunner
}

func NewRunService(projects *ProjectService, runner CodeRunner) *RunService {
	return &RunService{projects: projects, runner: runner}
}

// Run executes one of the user's projects. When code is non-nil it is run
// in place of the stored code, which is left untouched.
func (s *RunService) Run(ctx context.Context, user types.User, projectID string, code *string, stdin string) (types.RunResult, error) {
	project, err := s.projects.Get(ctx, user, projectID)
	if err != nil {
		return types.RunResult{}, err
	}

	source := project.Code
	if code != nil {
		source = *code
	}
	if strings.TrimSpace(source) == "" {
		return types.RunResult{}, fmt.Errorf("%w: nothing to run", ErrValidation)
	}

	return s.runner.Run(ctx, runner.Submission{
		LanguageID: languages.RunnerID(project.Language),
		SourceCode: source,
		Stdin:      stdin,
	})
}
