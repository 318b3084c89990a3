package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/OpenTollGate/awareness-food/src/analytics"
	"github.com/OpenTollGate/awareness-food/src/cli"
	"github.com/OpenTollGate/awareness-food/src/config_manager"
	"github.com/OpenTollGate/awareness-food/src/lifecycle"
	"github.com/OpenTollGate/awareness-food/src/network_monitor"
	"github.com/OpenTollGate/awareness-food/src/recipes"
	"github.com/OpenTollGate/awareness-food/src/screen"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var logger = logrus.WithField("module", "main")

// getConfigPath returns the configuration file path, checking environment variable first, then default
func getConfigPath() string {
	if configPath := os.Getenv("AWARENESS_FOOD_CONFIG_PATH"); configPath != "" {
		return configPath
	}
	return "/etc/awareness-food/config.json"
}

// app wires every component of the service together.
type app struct {
	monitor   *network_monitor.NetworkMonitor
	screen    *screen.Screen
	cliServer *cli.CLIServer
	analytics *analytics.NostrAnalytics
}

func newApp(config *config_manager.Config, out io.Writer, connectivity network_monitor.ConnectivityService,
	publisher analytics.Publisher) (*app, error) {
	tracker, err := analytics.New(config.Analytics, publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics: %w", err)
	}

	service, err := recipes.NewRecipesService(config.RecipeAPI, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipes service: %w", err)
	}

	monitor := network_monitor.NewNetworkMonitor(connectivity)
	view := screen.New(out, monitor,
		recipes.NewRecipeRepository(service),
		recipes.NewFoodTriviaRepository(service),
		tracker,
		lifecycle.NewUnavailableConnectionOwner())

	a := &app{
		monitor:   monitor,
		screen:    view,
		analytics: tracker,
	}
	if config.CLI.SocketPath != "" {
		a.cliServer = cli.NewCLIServer(config.CLI.SocketPath, view, tracker.Identity())
	}
	return a, nil
}

// run starts the monitor and serves until ctx is done or a component fails.
func (a *app) run(ctx context.Context) error {
	if err := a.monitor.Start(); err != nil {
		return fmt.Errorf("failed to start network monitor: %w", err)
	}
	defer func() {
		if err := a.monitor.Stop(); err != nil {
			logger.WithError(err).Warn("Failed to stop network monitor")
		}
		a.analytics.Flush()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.screen.Run(gctx)
	})

	if a.cliServer != nil {
		g.Go(func() error {
			if err := a.cliServer.Start(); err != nil {
				return fmt.Errorf("failed to start CLI server: %w", err)
			}
			<-gctx.Done()
			return a.cliServer.Stop()
		})
	}

	return g.Wait()
}

func main() {
	configPath := getConfigPath()

	configManager, err := config_manager.NewConfigManager(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create config manager")
	}

	config, err := configManager.EnsureInitializedConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	InitializeGlobalLogger(config.LogLevel, os.Stderr)
	logger.WithField("config_path", configPath).Info("Starting AwarenessFood")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var publisher analytics.Publisher
	if config.Analytics.Enabled {
		publisher = analytics.NewPoolPublisher(ctx)
	}

	connectivity := network_monitor.NewConnectivityService(&config.NetworkMonitor)
	a, err := newApp(config, os.Stdout, connectivity, publisher)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize")
	}

	if err := a.run(ctx); err != nil {
		logger.WithError(err).Fatal("AwarenessFood stopped with error")
	}
	logger.Info("AwarenessFood stopped")
}
