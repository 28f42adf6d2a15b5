package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-connectedcar/internal/config"
	"github.com/jrsteele09/go-connectedcar/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			exitCode = ExitCodeError
		}
	}()

	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		return ExitCodeError
	}
	logging.Setup(c.GetLogLevel(), c.GetPrettyLogs())
	logging.WithRunID(uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(newApp(c))
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		log.Err(err).Msg("Command failed")
		return getExitCode(err)
	}
	return ExitCodeSuccess
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
