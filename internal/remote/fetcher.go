// Package remote fetches declared git content sources into a local
// workspace so their content directories can be merged into the content
// tree before loading.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/pressgen/internal/config"
	"git.home.luguber.info/inful/pressgen/internal/retry"
)

// FetchResult captures the outcome of fetching one source.
type FetchResult struct {
	Name string
	// ContentPath is the directory to merge into the content tree: the
	// checkout root joined with the source's configured subdirectory.
	ContentPath string
	Head        string
	Err         error
}

// Fetcher clones or updates remote content sources. Implementations must be
// safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, src config.RemoteSource) FetchResult
}

// GitFetcher is the default Fetcher backed by go-git. Transient fetch
// failures are retried per the configured backoff policy.
type GitFetcher struct {
	workspace string
	policy    retry.Policy
}

// NewGitFetcher creates a fetcher that checks sources out under workspace.
func NewGitFetcher(workspace string) *GitFetcher {
	return &GitFetcher{workspace: workspace, policy: retry.DefaultPolicy()}
}

// Fetch ensures the source is present locally. Strategy "fresh" removes any
// previous checkout and clones anew; "update" pulls into an existing clone
// and falls back to a fresh clone when none exists.
func (f *GitFetcher) Fetch(ctx context.Context, src config.RemoteSource) FetchResult {
	res := FetchResult{Name: src.Name}
	repoPath := filepath.Join(f.workspace, src.Name)

	var repo *ggit.Repository
	var err error
	for attempt := 0; ; attempt++ {
		switch src.Strategy {
		case "update":
			repo, err = f.update(ctx, repoPath, src)
		default:
			repo, err = f.clone(ctx, repoPath, src)
		}
		if err == nil || attempt >= f.policy.MaxRetries || ctx.Err() != nil {
			break
		}
		delay := f.policy.Delay(attempt + 1)
		slog.Warn("Fetch failed, retrying", "name", src.Name, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}
	if err != nil {
		res.Err = err
		return res
	}

	if head, herr := repo.Head(); herr == nil {
		res.Head = head.Hash().String()
	}
	res.ContentPath = filepath.Join(repoPath, filepath.FromSlash(src.Path))
	return res
}

func (f *GitFetcher) clone(ctx context.Context, repoPath string, src config.RemoteSource) (*ggit.Repository, error) {
	if err := os.RemoveAll(repoPath); err != nil {
		return nil, fmt.Errorf("clean checkout dir: %w", err)
	}
	repo, err := ggit.PlainCloneContext(ctx, repoPath, false, &ggit.CloneOptions{
		URL:           src.URL,
		ReferenceName: plumbing.NewBranchReferenceName(src.Branch),
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		return nil, fmt.Errorf("clone %s: %w", src.URL, err)
	}
	return repo, nil
}

func (f *GitFetcher) update(ctx context.Context, repoPath string, src config.RemoteSource) (*ggit.Repository, error) {
	repo, err := ggit.PlainOpen(repoPath)
	if err != nil {
		// No usable checkout yet; behave like a fresh clone.
		return f.clone(ctx, repoPath, src)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree %s: %w", src.Name, err)
	}
	err = wt.PullContext(ctx, &ggit.PullOptions{
		ReferenceName: plumbing.NewBranchReferenceName(src.Branch),
		SingleBranch:  true,
	})
	if err != nil && err != ggit.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("pull %s: %w", src.Name, err)
	}
	return repo, nil
}

// FetchAll fetches every source on a bounded worker pool and returns results
// keyed by source name. A failed source is reported in its result; callers
// decide whether that is fatal.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []config.RemoteSource, concurrency int) map[string]FetchResult {
	if concurrency > len(sources) {
		concurrency = len(sources)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		results = make(map[string]FetchResult, len(sources))
	)
	tasks := make(chan config.RemoteSource)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for src := range tasks {
			select {
			case <-ctx.Done():
				return
			default:
			}
			res := fetcher.Fetch(ctx, src)
			if res.Err != nil {
				slog.Error("Failed to fetch content source", "name", src.Name, "error", res.Err)
			} else {
				slog.Info("Content source fetched", "name", src.Name, "head", res.Head)
			}
			mu.Lock()
			results[src.Name] = res
			mu.Unlock()
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
dispatch:
	for _, src := range sources {
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- src:
		}
	}
	close(tasks)
	wg.Wait()
	return results
}
