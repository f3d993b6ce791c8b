package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul/campaigner/internal/agents"
	"github.com/rahul/campaigner/internal/gateway"
	"github.com/rahul/campaigner/internal/governance"
	"github.com/rahul/campaigner/internal/llm"
	"github.com/rahul/campaigner/internal/observability"
	"github.com/rahul/campaigner/internal/orchestrator"
	"github.com/rahul/campaigner/internal/planner"
	"github.com/rahul/campaigner/internal/service"
	"github.com/rahul/campaigner/internal/store"
	"github.com/rahul/campaigner/pkg/config"
)

func main() {
	observability.PrintBanner()

	cfg := config.LoadConfig("config.json")
	logger := observability.NewLogger()

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}
	model, err := llm.NewModel(pName, pCfg)
	if err != nil {
		log.Fatal(err)
	}
	provider := llm.NewProvider(model)

	results, err := store.NewResultsStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer results.Close()

	gov := governance.NewDefaultPolicyEngine()
	// Default safety rules: block goals that ask for mass unsolicited outreach
	_ = gov.DenyGoal(`(?i)spam`)
	_ = gov.DenyGoal(`(?i)scrape\s+personal`)

	prompts := agents.NewPromptManager(cfg.Prompts.Path)
	loader := agents.NewDataLoader(cfg.Data.Path, cfg.Data.File, rune(cfg.Data.Delimiter[0]))

	collaborators := orchestrator.Collaborators{
		GoalParser: agents.NewGoalParser(provider, prompts),
		DataLoader: loader,
		Segmenter:  agents.NewSegmenter(cfg.Data.IDColumn),
		Profiler:   agents.NewProfileGenerator(provider, prompts, cfg.Data.IDColumn),
		Strategist: agents.NewStrategist(provider, prompts),
	}

	registry := planner.NewRegistry()
	executor := orchestrator.NewExecutor(registry, collaborators, cfg.StepTimeout(), logger)
	svc := service.NewCampaignService(registry, executor, gov, results, logger, cfg.Executor.PoolSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	svc.SetBaseContext(ctx)

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.LogHeartbeat()
			}
		}
	}()

	gw := gateway.NewHTTPGateway(cfg.Server.Addr, svc, results)
	go func() {
		log.Printf("HTTP gateway listening on %s", cfg.Server.Addr)
		if err := gw.Start(); err != nil {
			log.Printf("gateway critical error: %v", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	if err := gw.Stop(); err != nil {
		log.Printf("gateway shutdown error: %v", err)
	}

	// Let in-flight campaigns finish their current step updates
	done := make(chan struct{})
	go func() {
		svc.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}

	log.Println("campaigner stopped")
}
