package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uptime-config/api"
	"uptime-config/client"
	"uptime-config/config"
	"uptime-config/logger"
	v1 "uptime-config/services/v1"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "uptime-config",
		Short:        "Serve and persist the uptime monitor configuration",
		SilenceUsage: true,
	}
	serve := newServeCmd()
	root.AddCommand(serve, newExportCmd())
	root.RunE = serve.RunE
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the configuration API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, cleanup, err := openStore(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			factory, err := client.NewGitHubFactory(cfg.GitHubAPIURL, cfg.MirrorTimeout)
			if err != nil {
				return err
			}
			coordinator := v1.NewCoordinator(store, v1.NewGitHubMirror(factory), v1.MirrorOptions{
				Path:            cfg.MirrorPath,
				CommitMessage:   cfg.MirrorCommitMessage,
				CreateIfMissing: cfg.MirrorCreateIfMissing,
			}, log.Named("sync"))

			router := api.NewRouter(api.Dependencies{
				Syncer:       coordinator,
				Store:        store,
				Logger:       log,
				AllowOrigins: cfg.AllowOrigins,
			})
			return api.StartServer(ctx, ":"+cfg.Port, router, log.Named("http"))
		},
	}
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the stored configuration as the mirror source file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			defer log.Sync()

			store, cleanup, err := openStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := v1.NewCoordinator(store, nil, v1.MirrorOptions{}, log).Read(cmd.Context())
			if err != nil {
				return err
			}
			source, err := v1.ToMirrorSource(doc)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(source)
				return err
			}
			return os.WriteFile(out, source, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (v1.ConfigStore, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	switch cfg.StoreBackend {
	case config.StoreRedis:
		rdb, err := client.ConnectRedis(connectCtx, cfg.RedisURI, cfg.StoreTimeout)
		if err != nil {
			return nil, nil, err
		}
		log.Info("using redis store", zap.String("key", cfg.ConfigKey))
		return v1.NewRedisStore(rdb, cfg.ConfigKey), func() { rdb.Close() }, nil
	case config.StorePostgres:
		db, err := client.ConnectPostgres(connectCtx, cfg.PostgresURI)
		if err != nil {
			return nil, nil, err
		}
		store := v1.NewPostgresStore(db, cfg.ConfigKey)
		if err := store.EnsureSchema(connectCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Info("using postgres store", zap.String("key", cfg.ConfigKey))
		return store, func() { db.Close() }, nil
	case config.StoreMemory:
		log.Warn("using in-memory store, configuration is lost on restart")
		return v1.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
