package pulp

import (
	"context"
	"net/url"
)

const (
	reposPath   = "/repositories/"
	DefaultArch = "noarch"
)

// RepoOption adjusts the body sent by CreateRepo.
type RepoOption func(*repoSpec)

type repoSpec struct {
	name   string
	arch   string
	fields map[string]any
}

// WithName sets the display name; it defaults to the repository id.
func WithName(name string) RepoOption {
	return func(r *repoSpec) { r.name = name }
}

// WithArch sets the architecture; it defaults to noarch.
func WithArch(arch string) RepoOption {
	return func(r *repoSpec) { r.arch = arch }
}

// WithField passes an extra repository field through unvalidated, for
// example "feed" or "sync_schedule".
func WithField(key string, value any) RepoOption {
	return func(r *repoSpec) { r.fields[key] = value }
}

// WithFields passes several extra fields through unvalidated.
func WithFields(fields map[string]any) RepoOption {
	return func(r *repoSpec) {
		for k, v := range fields {
			r.fields[k] = v
		}
	}
}

func repoPath(id string) string {
	return reposPath + url.PathEscape(id) + "/"
}

// ListRepos lists every repository.
func (s *Session) ListRepos(ctx context.Context) (Result, error) {
	return s.Get(ctx, reposPath, nil)
}

// GetRepo fetches a single repository.
func (s *Session) GetRepo(ctx context.Context, id string) (Result, error) {
	return s.Get(ctx, repoPath(id), nil)
}

// CreateRepo creates a repository. The id, name and arch fields always win
// over extra fields with the same key.
func (s *Session) CreateRepo(ctx context.Context, id string, opts ...RepoOption) (Result, error) {
	return s.Post(ctx, reposPath, Object(createRepoBody(id, opts...)))
}

func createRepoBody(id string, opts ...RepoOption) map[string]any {
	spec := repoSpec{arch: DefaultArch, fields: map[string]any{}}
	for _, opt := range opts {
		opt(&spec)
	}
	name := spec.name
	if name == "" {
		name = id
	}
	body := spec.fields
	body["id"] = id
	body["name"] = name
	body["arch"] = spec.arch
	return body
}

// UpdateRepo sends fields unvalidated as the new repository values.
func (s *Session) UpdateRepo(ctx context.Context, id string, fields map[string]any) (Result, error) {
	return s.Put(ctx, repoPath(id), Object(fields))
}

// DeleteRepo deletes a repository.
func (s *Session) DeleteRepo(ctx context.Context, id string) (Result, error) {
	return s.Delete(ctx, repoPath(id))
}

// Schedules lists the sync schedules of all repositories.
func (s *Session) Schedules(ctx context.Context) (Result, error) {
	return s.Get(ctx, reposPath+"schedules/", nil)
}

// SyncHistory lists past syncs of a repository.
func (s *Session) SyncHistory(ctx context.Context, id string) (Result, error) {
	return s.Get(ctx, repoPath(id)+"history/sync/", nil)
}
