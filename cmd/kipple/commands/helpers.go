package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/metrasynth/gallery/internal/config"
	"github.com/metrasynth/gallery/internal/generator"
	"github.com/metrasynth/gallery/internal/patchstore"
	"github.com/metrasynth/gallery/internal/printer"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// loadConfig reads the --config file, reporting problems in printer format.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err == nil {
		return cfg, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return nil, printer.Error(
			fmt.Sprintf("%s not found", configPath),
			"No configuration file found at the given path.",
			[]string{
				"Create a default configuration:\n  kipple init",
				"Point at an existing file:\n  kipple generate --config path/to/kipple.yml",
			},
		)
	}
	return nil, printer.Error(
		"invalid configuration",
		err.Error(),
		[]string{fmt.Sprintf("Fix %s and try again", configPath)},
	)
}

// exhaustedError reports a stalled run with its progress.
func exhaustedError(err error, seed int64) error {
	var exhausted *generator.ExhaustedError
	if !errors.As(err, &exhausted) {
		return fmt.Errorf("generation failed: %w", err)
	}

	return printer.ErrorWithContext(
		"generation exhausted",
		fmt.Sprintf("Seed %d stopped growing before reaching its target module count.", seed),
		map[string]string{
			"Module count": strconv.Itoa(exhausted.ModuleCount),
			"Target":       strconv.Itoa(exhausted.Target),
			"Stall":        strconv.Itoa(exhausted.Stall),
			"Budget":       strconv.Itoa(exhausted.Budget),
			"Iterations":   strconv.Itoa(exhausted.Iterations),
		},
		[]string{
			"Raise max_cycles in kipple.yml",
			fmt.Sprintf("Try another seed:\n  kipple generate --seed %d", seed+1),
			"Raise the synth and effect category probabilities",
		},
	)
}

// openStore connects to the Redis instance named in the store section.
func openStore(ctx context.Context, store *config.StoreConfig) (*patchstore.Client, error) {
	if store == nil {
		return nil, printer.Error(
			"no patch store configured",
			"This command needs a Redis patch store.",
			[]string{"Add a store section to kipple.yml:\n  store:\n    redis_addr: localhost:6379\n    instance: default"},
		)
	}

	client, err := patchstore.NewClient(&redis.Options{Addr: store.RedisAddr}, store.Instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create patch store client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, printer.ErrorWithContext(
			"Redis connection failed",
			fmt.Sprintf("Could not connect to Redis at %s", store.RedisAddr),
			map[string]string{"Instance": store.Instance, "Error": err.Error()},
			[]string{"Check that Redis is running and store.redis_addr is correct"},
		)
	}
	return client, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
