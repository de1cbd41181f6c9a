package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/extract"
	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/nlp"
	"github.com/ppiankov/claimcheck/internal/pipeline"
	"github.com/ppiankov/claimcheck/internal/search"
	"github.com/ppiankov/claimcheck/internal/source"
	"github.com/ppiankov/claimcheck/internal/util"
	"github.com/ppiankov/claimcheck/internal/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runFlags are the per-command overrides shared by check, extract and batch
type runFlags struct {
	timeout     time.Duration
	noCache     bool
	noFooter    bool
	insecure    bool
	llmProvider string
	llmModel    string
	httpProxy   string
	httpsProxy  string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "timeout for evidence page fetches (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable cache (force fresh search and fetch)")
	cmd.Flags().BoolVar(&f.noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&f.insecure, "insecure", false, "skip TLS certificate verification for evidence pages")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, gemini)")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	cmd.Flags().StringVar(&f.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&f.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

// apply overlays the flags the user actually set onto cfg
func (f *runFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	changed := cmd.Flags().Changed

	if changed("timeout") {
		cfg.HTTP.Timeout = f.timeout
	}
	if changed("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if changed("no-footer") {
		cfg.Output.IncludeFooter = !f.noFooter
	}
	if changed("insecure") {
		cfg.HTTP.InsecureTLS = f.insecure
	}
	if changed("http-proxy") {
		cfg.HTTP.HTTPProxy = f.httpProxy
	}
	if changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = f.httpsProxy
	}
	if changed("llm-model") {
		cfg.LLM.Model = f.llmModel
	}
	if changed("llm-provider") && f.llmProvider != cfg.LLM.Provider {
		// Key and model from the configured provider do not carry over
		cfg.LLM.Provider = f.llmProvider
		cfg.LLM.APIKey = ""
		if !changed("llm-model") {
			cfg.LLM.Model = ""
		}
		applyEnvKeys(cfg, os.Getenv)
	}
}

// commandConfig loads the merged configuration and applies command flags
func commandConfig(cmd *cobra.Command, flags *runFlags) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flags.apply(cmd, cfg)
	return cfg, nil
}

// buildPipeline wires every pipeline component from cfg. Posts are only
// fetched when needPosts is set, so text-only runs need no post API key.
func buildPipeline(ctx context.Context, cfg *model.Config, needPosts bool) (*pipeline.Pipeline, func(), error) {
	log := logger.FromContext(ctx)

	c, closeCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("create cache: %w", err)
	}
	cleanup := closeCache

	provider, err := llm.NewProvider(ctx, llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if closer, ok := provider.(io.Closer); ok {
		cleanup = func() {
			_ = closer.Close()
			closeCache()
		}
	}

	searcher, err := search.NewGoogleSearcher(ctx, cfg.Search, c)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("create searcher: %w", err)
	}

	fetcher := pipeline.NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	)
	pageOpts := []pipeline.PageReaderOption{
		pipeline.WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
		pipeline.WithPageCache(c, cfg.Cache.DiskTTL),
	}
	if cfg.HTTP.RespectRobots {
		pageOpts = append(pageOpts, pipeline.WithRobots(util.NewRobotsChecker(fetcher.Client(), cfg.HTTP.UserAgent)))
	}

	classifier := llm.NewClaimClassifier(provider, cfg.LLM.ClaimThreshold, c)
	components := pipeline.Components{
		Sentiment: llm.NewSentimentAnalyzer(provider),
		Detector:  classifier,
		Extractor: extract.NewClaimExtractor(nlp.NewProseAnalyzer(), classifier),
		Searcher:  searcher,
		Pages:     pipeline.NewPageReader(fetcher, cfg.HTTP.MaxTextChars, pageOpts...),
		NLI:       llm.NewEntailmentScorer(provider, c),
		Authority: source.NewAuthorityClassifier(&cfg.Authority),
	}

	if needPosts {
		posts, err := pipeline.NewPostFetcher(cfg.Post.APIKey, cfg.Post.APIHost, cfg.Post.Timeout)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("create post fetcher: %w", err)
		}
		components.Posts = posts
	}

	p, err := pipeline.New(components, pipeline.OptionsFromConfig(cfg))
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	log.Debug("pipeline ready",
		zap.String("llm_provider", provider.Name()),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("robots", cfg.HTTP.RespectRobots),
	)
	return p, cleanup, nil
}
