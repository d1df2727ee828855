package main

import (
	"github.com/rotisserie/eris"

	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/batch"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/config"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/fetcher"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/judge"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/internal/task"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/pkg/anthropic"
	"github.com/faizuddinzulkifli7-netizen/facebook-url-search/pkg/google"
)

// appEnv bundles the wired pipeline shared by the run and serve
// commands.
type appEnv struct {
	cfg          *config.Config
	registry     *task.Registry
	orchestrator *batch.Orchestrator
	aiEnabled    bool
}

// newEnv wires the fetcher, judge, registry and orchestrator from
// configuration. offline swaps the search backend for a stub; noAI
// forces the judgment adapter off even when configured.
func newEnv(cfg *config.Config, offline, noAI bool) (*appEnv, error) {
	registry := task.NewRegistry()
	orch, aiEnabled, err := newOrchestrator(cfg, registry, offline, noAI)
	if err != nil {
		return nil, err
	}
	return &appEnv{
		cfg:          cfg,
		registry:     registry,
		orchestrator: orch,
		aiEnabled:    aiEnabled,
	}, nil
}

// newOrchestrator builds a pipeline against an existing registry. The
// server uses it to honor per-upload locale overrides.
func newOrchestrator(cfg *config.Config, registry *task.Registry, offline, noAI bool) (*batch.Orchestrator, bool, error) {
	var f batch.Fetcher
	if offline {
		f = &fetcher.Stub{}
	} else {
		if cfg.Google.APIKey == "" || cfg.Google.CSEID == "" {
			return nil, false, eris.New("cmd: google api_key and cse_id are required (set FBSEARCH_GOOGLE_API_KEY and FBSEARCH_GOOGLE_CSE_ID)")
		}
		f = fetcher.NewGoogle(google.NewClient(cfg.Google.APIKey, cfg.Google.CSEID), cfg.Google)
	}

	var j judge.Judge
	aiEnabled := !noAI && cfg.Anthropic.Enabled()
	if aiEnabled {
		j = judge.New(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
	}

	return batch.New(f, j, registry, *cfg), aiEnabled, nil
}
