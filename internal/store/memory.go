package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dcode-ide/apiserver/types"
)

// Memory is an in-process store for users and projects. It backs the
// "memory" store driver and the handler tests.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]types.User
	emails   map[string]string
	projects map[string]types.Project
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]types.User),
		emails:   make(map[string]string),
		projects: make(map[string]types.Project),
	}
}

// Users returns a user repository view over m.
func (m *Memory) Users() *MemoryUserRepository {
	return &MemoryUserRepository{m: m}
}

// Projects returns a project repository view over m.
func (m *Memory) Projects() *MemoryProjectRepository {
	return &MemoryProjectRepository{m: m}
}

type MemoryUserRepository struct {
	m *Memory
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (types.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	user, ok := r.m.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	id, ok := r.m.emails[email]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return r.m.users[id], nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.emails[user.Email]; ok {
		return types.User{}, ErrDuplicate
	}
	if _, ok := r.m.users[user.ID]; ok {
		return types.User{}, ErrDuplicate
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.m.users[user.ID] = user
	r.m.emails[user.Email] = user.ID
	return user, nil
}

type MemoryProjectRepository struct {
	m *Memory
}

func (r *MemoryProjectRepository) ListByOwner(_ context.Context, ownerID string) ([]types.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	projects := make([]types.Project, 0)
	for _, project := range r.m.projects {
		if project.OwnerID == ownerID {
			projects = append(projects, project)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (r *MemoryProjectRepository) Get(_ context.Context, id, ownerID string) (types.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	project, ok := r.m.projects[id]
	if !ok || project.OwnerID != ownerID {
		return types.Project{}, ErrNotFound
	}
	return project, nil
}

func (r *MemoryProjectRepository) GetByID(_ context.Context, id string) (types.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	project, ok := r.m.projects[id]
	if !ok {
		return types.Project{}, ErrNotFound
	}
	return project, nil
}

func (r *MemoryProjectRepository) Create(_ context.Context, project types.Project) (types.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.projects[project.ID]; ok {
		return types.Project{}, ErrDuplicate
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.m.projects[project.ID] = project
	return project, nil
}

func (r *MemoryProjectRepository) UpdateCode(_ context.Context, id, ownerID, code string) error {
	return r.update(id, ownerID, func(p *types.Project) { p.Code = code })
}

func (r *MemoryProjectRepository) UpdateName(_ context.Context, id, ownerID, name string) error {
	return r.update(id, ownerID, func(p *types.Project) { p.Name = name })
}

func (r *MemoryProjectRepository) Delete(_ context.Context, id, ownerID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	project, ok := r.m.projects[id]
	if !ok || project.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.m.projects, id)
	return nil
}

func (r *MemoryProjectRepository) update(id, ownerID string, apply func(*types.Project)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	project, ok := r.m.projects[id]
	if !ok || project.OwnerID != ownerID {
		return ErrNotFound
	}
	apply(&project)
	project.UpdatedAt = time.Now()
	r.m.projects[id] = project
	return nil
}
