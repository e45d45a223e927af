package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"scribe/internal/config"
	"scribe/internal/notify"
	"scribe/internal/orchestrator"
	"scribe/internal/registry"
	"scribe/internal/wiki"
	"scribe/pkg/docboard"
)

func main() {
	// 1. Load environment variables
	instanceName := os.Getenv("SCRIBE_INSTANCE_NAME")
	redisURL := os.Getenv("REDIS_URL")
	configPath := os.Getenv("SCRIBE_CONFIG")
	if configPath == "" {
		configPath = "scribe.yml"
	}

	if instanceName == "" || redisURL == "" {
		fmt.Fprintf(os.Stderr, "Error: SCRIBE_INSTANCE_NAME and REDIS_URL must be set\n")
		os.Exit(1)
	}

	// 2. Parse Redis URL
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid REDIS_URL: %v\n", err)
		os.Exit(1)
	}

	// 3. Create docboard client
	board, err := docboard.NewClient(redisOpts, instanceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create docboard client: %v\n", err)
		os.Exit(1)
	}
	defer board.Close()

	// 4. Verify Redis connectivity
	ctx := context.Background()
	if err := board.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Redis not accessible: %v\n", err)
		os.Exit(1)
	}

	// 5. Load scribe.yml configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load %s: %v\n", configPath, err)
		os.Exit(1)
	}

	fmt.Printf("Scribe daemon starting for instance '%s' with %d teams and %d templates\n",
		instanceName, len(cfg.Teams), len(cfg.Templates))

	// 6. Build the generation engine
	opts := orchestrator.Options{
		MaxConcurrentJobs: *cfg.Orchestrator.MaxConcurrentJobs,
		MaxRetries:        *cfg.Orchestrator.MaxRetries,
	}
	if cfg.Wiki != nil {
		client := wiki.New(cfg.Wiki.BaseURL, cfg.Wiki.SpaceKey)
		client.BearerToken = cfg.Wiki.Token
		if token := os.Getenv("SCRIBE_WIKI_TOKEN"); token != "" {
			client.BearerToken = token
		}
		opts.Publisher = client
		fmt.Printf("Wiki publishing enabled (%s)\n", cfg.Wiki.BaseURL)
	}

	broadcaster := notify.New(board, notify.NewRedisTransport(board))
	engine := orchestrator.NewEngine(board, registry.New(board),
		broadcaster, config.NewDirectory(cfg), config.NewCatalog(cfg), opts)

	// 7. Setup graceful shutdown
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	// 8. Start the request loop in a goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(runCtx, board, engine)
	}()

	// 9. Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		fmt.Printf("Received signal %v, shutting down...\n", sig)
		cancel()
		<-errCh

	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Daemon failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("Scribe daemon stopped")
}

// run consumes generation requests until the context is cancelled. Each
// request is handled in its own goroutine; the engine's slot limit bounds
// how many generate concurrently.
func run(ctx context.Context, board *docboard.Client, engine *orchestrator.Engine) error {
	subscription, err := board.SubscribeGenerationRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to generation requests: %w", err)
	}
	defer subscription.Close()

	log.Printf("[Daemon] Subscribed to generation requests")

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Daemon] Shutting down...")
			return nil

		case req, ok := <-subscription.Requests():
			if !ok {
				log.Printf("[Daemon] Subscription closed")
				return nil
			}

			wg.Add(1)
			go func(req *docboard.GenerationRequest) {
				defer wg.Done()
				result, err := engine.Generate(ctx, req)
				if err != nil {
					log.Printf("[Daemon] Generation for session %s failed: %v", req.Context.SessionID, err)
					return
				}
				log.Printf("[Daemon] Job %s for session %s finished with status %s",
					result.Job.ID, req.Context.SessionID, result.Job.Status)
			}(req)

		case err, ok := <-subscription.Errors():
			if !ok {
				log.Printf("[Daemon] Error channel closed")
				return nil
			}
			log.Printf("[Daemon] Subscription error: %v", err)
		}
	}
}
