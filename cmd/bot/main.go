package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"homeworkbot/internal/app"
	"homeworkbot/internal/config"
	logx "homeworkbot/pkg/logx"
)

func main() {
	var cfgPath, envPath string
	flag.StringVar(&cfgPath, "config", "", "path to an optional config file (.yaml, .yml or .json)")
	flag.StringVar(&envPath, "env", ".env", "path to an optional .env file")
	flag.Parse()

	boot := logx.NewConsole("INFO").With(logx.String("comp", "main"))

	if err := config.LoadDotEnv(envPath); err != nil {
		boot.Critical(app.StartupFailure(err))
		os.Exit(1)
	}
	creds, err := config.LoadCredentials(os.Getenv)
	if err != nil {
		boot.Critical(app.StartupFailure(err))
		os.Exit(1)
	}

	cfgm := config.NewConfigManager(cfgPath)
	if _, err := cfgm.Load(); err != nil {
		boot.Critical(app.StartupFailure(err))
		os.Exit(1)
	}

	a, err := app.New(cfgm, creds)
	if err != nil {
		boot.Critical(app.StartupFailure(err))
		os.Exit(1)
	}
	cfgm.SetLogger(a.Logger().With(logx.String("comp", "config")))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		a.Logger().Error("bot stopped with error", logx.Err(err))
		os.Exit(1)
	}
}
