// Package gitmeta resolves repository metadata, primarily the branch an
// acquisition attempt should operate against.
package gitmeta

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repotext/internal/intake"
)

// BranchCandidates is the ordered set of branch names probed when the
// repository's default branch cannot be read from metadata.
var BranchCandidates = []string{"main", "master", "develop"}

// probeMarker is the root-level file whose presence confirms a branch.
const probeMarker = "README.md"

// Resolver determines which branch to use for one acquisition attempt.
//
// Resolution is attempted in order: repository metadata, a per-candidate
// marker-file probe, then the first candidate unconditionally. Resolve
// never fails; every subsequent fetch in the attempt depends on its
// answer, so an unresolvable branch must not abort the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, id intake.Identity) string
}

// GitHubResolver resolves branches against the GitHub API and raw host.
type GitHubResolver struct {
	api          *github.Client
	hc           *http.Client
	rawBaseURL   string
	probeTimeout time.Duration
	logger       *zap.Logger
}

// NewGitHubResolver creates a resolver. api may carry credentials; hc is
// used for raw-host probes only.
func NewGitHubResolver(api *github.Client, hc *http.Client, rawBaseURL string, probeTimeout time.Duration, logger *zap.Logger) *GitHubResolver {
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &GitHubResolver{
		api:          api,
		hc:           hc,
		rawBaseURL:   rawBaseURL,
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Resolve returns the branch to use for id.
func (r *GitHubResolver) Resolve(ctx context.Context, id intake.Identity) string {
	if branch := r.defaultFromMetadata(ctx, id); branch != "" {
		r.logger.Debug("branch resolved from metadata",
			zap.String("repo", id.String()),
			zap.String("branch", branch))
		return branch
	}

	for _, candidate := range BranchCandidates {
		if r.probe(ctx, id, candidate) {
			r.logger.Debug("branch resolved by probe",
				zap.String("repo", id.String()),
				zap.String("branch", candidate))
			return candidate
		}
	}

	// Every probe failed; the pipeline still needs an answer.
	fallback := BranchCandidates[0]
	r.logger.Debug("branch resolution fell back",
		zap.String("repo", id.String()),
		zap.String("branch", fallback))
	return fallback
}

// defaultFromMetadata asks the API for the repository's default branch.
func (r *GitHubResolver) defaultFromMetadata(ctx context.Context, id intake.Identity) string {
	if r.api == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	repo, _, err := r.api.Repositories.Get(ctx, id.Owner, id.Name)
	if err != nil {
		r.logger.Debug("repository metadata lookup failed",
			zap.String("repo", id.String()),
			zap.Error(err))
		return ""
	}
	return repo.GetDefaultBranch()
}

// probe checks whether the marker file resolves on the given branch.
func (r *GitHubResolver) probe(ctx context.Context, id intake.Identity, branch string) bool {
	ctx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/%s/%s/%s", r.rawBaseURL, id.Owner, id.Name, branch, probeMarker)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
