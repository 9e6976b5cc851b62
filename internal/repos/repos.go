// Package repos tracks the git repositories that pods reference as remote
// build contexts and clones them into the project's source tree.
package repos

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/cameronsjo/conductor/internal/pod"
)

var (
	// ErrDuplicateAlias indicates two different repositories whose local
	// directory names would collide.
	ErrDuplicateAlias = errors.New("duplicate repository alias")

	// ErrUnknownRepo indicates a lookup for a repository no pod references.
	ErrUnknownRepo = errors.New("unknown repository")
)

// Repo is one git repository used as a build context.
type Repo struct {
	url   string
	ref   string
	alias string
}

// URL returns the clone URL, without any #ref:subdir suffix.
func (r *Repo) URL() string {
	return r.url
}

// Ref returns the branch requested by the build context, if any.
func (r *Repo) Ref() string {
	return r.ref
}

// Alias returns the short name used as the checkout directory.
func (r *Repo) Alias() string {
	return r.alias
}

// Path returns the checkout directory inside srcDir.
func (r *Repo) Path(srcDir string) string {
	return filepath.Join(srcDir, r.alias)
}

// IsCloned reports whether the checkout directory holds a git repository.
func (r *Repo) IsCloned(srcDir string) bool {
	_, err := git.PlainOpen(r.Path(srcDir))
	return err == nil
}

// Clone clones the repository into srcDir. Progress output, if any, goes to
// progress.
func (r *Repo) Clone(ctx context.Context, srcDir string, progress io.Writer) error {
	dest := r.Path(srcDir)
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("clone %s: %s: %w", r.url, dest, fs.ErrExist)
	}

	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", srcDir, err)
	}

	opts := &git.CloneOptions{
		URL:      r.url,
		Progress: progress,
	}
	if r.ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(r.ref)
		opts.SingleBranch = true
	}

	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		os.RemoveAll(dest)
		return fmt.Errorf("clone %s: %w", r.url, err)
	}
	return nil
}

// Repos is the set of repositories referenced by a project's pods.
type Repos struct {
	byURL   map[string]*Repo
	byAlias map[string]*Repo
}

// New collects the remote build contexts of every pod.
func New(pods []*pod.Pod) (*Repos, error) {
	r := &Repos{
		byURL:   make(map[string]*Repo),
		byAlias: make(map[string]*Repo),
	}

	for _, p := range pods {
		for _, ctx := range p.BuildContexts() {
			if err := r.add(ctx); err != nil {
				return nil, fmt.Errorf("pod %s: %w", p.Name(), err)
			}
		}
	}

	return r, nil
}

func (r *Repos) add(buildContext string) error {
	url, ref := SplitContext(buildContext)
	if _, exists := r.byURL[url]; exists {
		return nil
	}

	alias := AliasFor(url)
	if other, exists := r.byAlias[alias]; exists {
		return fmt.Errorf("%w: %s used by %s and %s", ErrDuplicateAlias, alias, other.url, url)
	}

	repo := &Repo{url: url, ref: ref, alias: alias}
	r.byURL[url] = repo
	r.byAlias[alias] = repo
	return nil
}

// SplitContext separates a build context URL from its "#ref:subdir"
// fragment and returns the URL and ref.
func SplitContext(buildContext string) (url, ref string) {
	url, fragment, _ := strings.Cut(buildContext, "#")
	ref, _, _ = strings.Cut(fragment, ":")
	return url, ref
}

// AliasFor derives the checkout directory name from a repository URL: the
// final path component without a .git suffix.
func AliasFor(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}

// List returns all repositories sorted by alias.
func (r *Repos) List() []*Repo {
	list := make([]*Repo, 0, len(r.byAlias))
	for _, repo := range r.byAlias {
		list = append(list, repo)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].alias < list[j].alias })
	return list
}

// Len returns the number of repositories.
func (r *Repos) Len() int {
	return len(r.byURL)
}

// Find returns the repository for a build context, which may carry a
// "#ref:subdir" fragment.
func (r *Repos) Find(buildContext string) (*Repo, bool) {
	url, _ := SplitContext(buildContext)
	repo, ok := r.byURL[url]
	return repo, ok
}

// FindByAlias returns the repository with the given alias.
func (r *Repos) FindByAlias(alias string) (*Repo, error) {
	repo, ok := r.byAlias[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRepo, alias)
	}
	return repo, nil
}

// LocalCheckout returns the directory a build context should use when its
// repository has been cloned into srcDir. A subdir in the context fragment
// is appended.
func (r *Repos) LocalCheckout(srcDir, buildContext string) (string, bool) {
	repo, ok := r.Find(buildContext)
	if !ok || !repo.IsCloned(srcDir) {
		return "", false
	}

	dir := repo.Path(srcDir)
	_, fragment, _ := strings.Cut(buildContext, "#")
	if _, subdir, ok := strings.Cut(fragment, ":"); ok && subdir != "" {
		dir = filepath.Join(dir, subdir)
	}
	return dir, true
}
