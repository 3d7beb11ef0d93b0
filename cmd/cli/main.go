package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/favisend/internal/client/cli"
	"github.com/dmitrijs2005/favisend/internal/client/config"
	"github.com/dmitrijs2005/favisend/internal/logging"
)

func main() {

	cfg, err := config.Load(os.Args[1:], nil)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if s, ok := logger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first interrupt cancels in-flight requests and ends the REPL after
	// the current input line; a second one terminates the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
