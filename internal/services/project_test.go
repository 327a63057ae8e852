package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dcode-ide/apiserver/internal/mq"
	"github.com/dcode-ide/apiserver/internal/store"
	"github.com/dcode-ide/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	mu      sync.Mutex
	saved   map[string]string
	removed []string
	err     error
}

func (m *recordingMirror) Save(_ context.Context, p types.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.saved == nil {
		m.saved = map[string]string{}
	}
	m.saved[p.ID] = p.Code
	return nil
}

func (m *recordingMirror) Remove(_ context.Context, p types.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.removed = append(m.removed, p.ID)
	return nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []mq.ProjectEvent
	err    error
}

func (e *recordingEvents) PublishProjectEvent(_ context.Context, ev mq.ProjectEvent) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return "", e.err
	}
	e.events = append(e.events, ev)
	return "id", nil
}

func (e *recordingEvents) kinds() []mq.EventType {
	out := make([]mq.EventType, 0, len(e.events))
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

var (
	alice = types.User{ID: "alice"}
	bob   = types.User{ID: "bob"}
)

func TestCreateSeedsStarterCode(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(store.NewMemory().Projects(), nil)

	cases := map[string]string{
		"python": `print("Hello World")`,
		"Java":   `public class Main { public static void main(String[] args) { System.out.println("Hello World"); } }`,
		"JAVA":   `public class Main { public static void main(String[] args) { System.out.println("Hello World"); } }`,
		"ruby":   "Language not supported",
	}
	for language, want := range cases {
		project, err := svc.Create(ctx, alice, "p-"+language, language, "1.0")
		require.NoError(t, err)
		assert.Equal(t, want, project.Code, language)
		assert.Equal(t, language, project.Language)
		assert.Equal(t, alice.ID, project.OwnerID)
		assert.NotEmpty(t, project.ID)
	}

	_, err := svc.Create(ctx, alice, "", "python", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSaveCodeIdempotentAndScoped(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(store.NewMemory().Projects(), nil)

	project, err := svc.Create(ctx, alice, "p1", "python", "3.12")
	require.NoError(t, err)

	require.NoError(t, svc.SaveCode(ctx, alice, project.ID, "print(1)"))
	require.NoError(t, svc.SaveCode(ctx, alice, project.ID, "print(1)"))

	got, err := svc.Get(ctx, alice, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "print(1)", got.Code)

	require.NoError(t, svc.SaveCode(ctx, alice, project.ID, ""))
	got, err = svc.Get(ctx, alice, project.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Code)

	assert.ErrorIs(t, svc.SaveCode(ctx, bob, project.ID, "evil"), store.ErrNotFound)
	assert.ErrorIs(t, svc.SaveCode(ctx, alice, "missing", "x"), store.ErrNotFound)
}

func TestListNeverLeaksOtherUsers(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(store.NewMemory().Projects(), nil)

	for _, name := range []string{"a1", "a2"} {
		_, err := svc.Create(ctx, alice, name, "go", "")
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, bob, "b1", "go", "")
	require.NoError(t, err)

	projects, err := svc.List(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
	for _, p := range projects {
		assert.Equal(t, alice.ID, p.OwnerID)
	}

	empty, err := svc.List(ctx, types.User{ID: "carol"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetAndRenameRequireOwnership(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(store.NewMemory().Projects(), nil)

	project, err := svc.Create(ctx, alice, "p1", "c", "")
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, project.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, svc.Rename(ctx, bob, project.ID, "stolen"), store.ErrNotFound)
	require.NoError(t, svc.Rename(ctx, alice, project.ID, "renamed"))
	assert.ErrorIs(t, svc.Rename(ctx, alice, project.ID, "  "), ErrValidation)

	got, err := svc.Get(ctx, alice, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestDeleteIsIdempotentAndScoped(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(store.NewMemory().Projects(), nil)

	project, err := svc.Create(ctx, alice, "p1", "bash", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, bob, project.ID))
	_, err = svc.Get(ctx, alice, project.ID)
	require.NoError(t, err, "another user's delete must not remove the project")

	require.NoError(t, svc.Delete(ctx, alice, project.ID))
	require.NoError(t, svc.Delete(ctx, alice, project.ID))
	_, err = svc.Get(ctx, alice, project.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLanguageLookup(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(store.NewMemory().Projects(), nil)

	project, err := svc.Create(ctx, alice, "p1", "javascript", "")
	require.NoError(t, err)

	language, err := svc.Language(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "javascript", language)

	_, err = svc.Language(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMirrorAndEventsFollowLifecycle(t *testing.T) {
	ctx := context.Background()
	mirror := &recordingMirror{}
	events := &recordingEvents{}
	svc := NewProjectService(store.NewMemory().Projects(), nil, WithCodeMirror(mirror), WithEvents(events))

	project, err := svc.Create(ctx, alice, "p1", "python", "")
	require.NoError(t, err)
	assert.Equal(t, `print("Hello World")`, mirror.saved[project.ID])

	require.NoError(t, svc.SaveCode(ctx, alice, project.ID, "print(2)"))
	assert.Equal(t, "print(2)", mirror.saved[project.ID])

	require.NoError(t, svc.Rename(ctx, alice, project.ID, "p2"))
	require.NoError(t, svc.Delete(ctx, alice, project.ID))
	require.NoError(t, svc.Delete(ctx, alice, project.ID))

	assert.Equal(t, []string{project.ID}, mirror.removed)
	assert.Equal(t, []mq.EventType{
		mq.ProjectCreated, mq.ProjectSaved, mq.ProjectRenamed, mq.ProjectDeleted,
	}, events.kinds())
	assert.Equal(t, "p2", events.events[3].Name)
}

func TestMirrorAndEventFailuresDoNotFailRequests(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("offline")
	svc := NewProjectService(store.NewMemory().Projects(), nil,
		WithCodeMirror(&recordingMirror{err: boom}),
		WithEvents(&recordingEvents{err: boom}))

	project, err := svc.Create(ctx, alice, "p1", "python", "")
	require.NoError(t, err)
	require.NoError(t, svc.SaveCode(ctx, alice, project.ID, "x"))
	require.NoError(t, svc.Rename(ctx, alice, project.ID, "y"))
	require.NoError(t, svc.Delete(ctx, alice, project.ID))
}
