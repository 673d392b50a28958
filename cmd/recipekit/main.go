// Package main 是交互式的菜谱推荐命令行。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/recipekit/config"
	"github.com/rushteam/recipekit/pkg/logger"
	"github.com/rushteam/recipekit/service"
)

var Version = "dev"

func main() {
	configPath := flag.String("config", "", "config file (YAML or JSON); defaults to $"+config.EnvConfigPath)
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	cfg.Log.Service = "recipekit"
	l := logger.New(cfg.Log, os.Stderr)
	log.Logger = l

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("version", Version).Msg("starting recipekit")

	r, err := service.FromConfig(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to start")
	}
	defer func() {
		if err := r.Close(); err != nil {
			l.Error().Err(err).Msg("close store")
		}
	}()

	if err := runREPL(ctx, r, os.Stdin, os.Stdout); err != nil {
		l.Error().Err(err).Msg("session ended with error")
	}
}
