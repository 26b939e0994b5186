package acquire

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/repotext/internal/config"
	"github.com/fyrsmithlabs/repotext/internal/discovery"
	"github.com/fyrsmithlabs/repotext/internal/fetch"
	"github.com/fyrsmithlabs/repotext/internal/gitmeta"
	"github.com/fyrsmithlabs/repotext/internal/intake"
	"github.com/fyrsmithlabs/repotext/internal/workspace"
)

// GitHubPipelineBuilder builds real pipelines against GitHub.
type GitHubPipelineBuilder struct {
	github  config.GitHubConfig
	acquire config.AcquireConfig
	manager *workspace.Manager
	logger  *zap.Logger
}

// NewGitHubPipelineBuilder creates the production pipeline builder.
func NewGitHubPipelineBuilder(cfg *config.Config, logger *zap.Logger) *GitHubPipelineBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubPipelineBuilder{
		github:  cfg.GitHub,
		acquire: cfg.Acquire,
		manager: workspace.NewManager(cfg.Acquire.TempRoot, logger),
		logger:  logger,
	}
}

// Build implements PipelineBuilder. token overrides the configured
// credential for this attempt; an empty token falls back to it.
func (b *GitHubPipelineBuilder) Build(ctx context.Context, token string) Pipeline {
	if token == "" {
		token = b.github.Token.Value()
	}

	hc := &http.Client{}
	api := b.apiClient(ctx, token)

	var limiter *rate.Limiter
	if b.acquire.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.acquire.RatePerSecond), int(b.acquire.RatePerSecond)+1)
	}

	cloneDepth := 1
	strategies := []discovery.Strategy{
		discovery.NewTreeStrategy(api, b.acquire.ListTimeout.Duration(), b.logger),
		discovery.NewScrapeStrategy(hc, b.github.WebBaseURL, b.acquire.ScrapeDepth, b.acquire.ListTimeout.Duration(), b.logger),
		discovery.NewCloneStrategy(b.manager, b.github.WebBaseURL, cloneDepth, b.acquire.CloneTimeout.Duration(), b.logger),
	}
	if b.acquire.ClonePrimary {
		strategies = []discovery.Strategy{strategies[2], strategies[0], strategies[1]}
	}

	return &githubPipeline{
		resolver: gitmeta.NewGitHubResolver(api, hc, b.github.RawBaseURL, b.acquire.ProbeTimeout.Duration(), b.logger),
		ordered:  strategies,
		hc:       hc,
		rawBase:  b.github.RawBaseURL,
		token:    token,
		limiter:  limiter,
	}
}

// apiClient builds a go-github client, wrapping the transport with a
// static token source when a credential is present.
func (b *GitHubPipelineBuilder) apiClient(ctx context.Context, token string) *github.Client {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(hc)
	if b.github.APIBaseURL != "" && b.github.APIBaseURL != "https://api.github.com" {
		if base, err := url.Parse(strings.TrimSuffix(b.github.APIBaseURL, "/") + "/"); err == nil {
			client.BaseURL = base
		}
	}
	return client
}

// githubPipeline is the production Pipeline.
type githubPipeline struct {
	resolver gitmeta.Resolver
	ordered  []discovery.Strategy
	hc       *http.Client
	rawBase  string
	token    string
	limiter  *rate.Limiter
}

func (p *githubPipeline) Resolver() gitmeta.Resolver { return p.resolver }

func (p *githubPipeline) Strategies() []discovery.Strategy { return p.ordered }

func (p *githubPipeline) RemoteSource(id intake.Identity, branch string) fetch.Source {
	return fetch.NewRemoteSource(p.hc, p.rawBase, id, branch, p.token, p.limiter)
}
