package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func main() {
	service := filepath.Base(os.Args[0])
	fs := flag.NewFlagSet(service, flag.ExitOnError)
	config := NewConfig(fs, os.Args[1:])
	SetupLogger(*config.verbose)
	if *config.sysLog {
		if err := EnableSyslog(service); err != nil {
			Warn("cannot attach syslog: %v", err)
		}
	}
	if *config.file == "" {
		Fatal("no GPIO definition file, use -f <filename>")
	}

	defs, err := LoadGpioDef(*config.file)
	if err != nil {
		Fatal("%v", err)
	}
	if *config.verbose {
		Debug("loaded %d chip definitions from %s", len(defs), *config.file)
	}

	store := NewMemStore()
	store.Add(statusVarName, 0)
	if *config.vars != "" {
		if err := store.SeedFromFile(*config.vars); err != nil {
			Fatal("%v", err)
		}
	}

	open, err := chipOpener(*config.backend)
	if err != nil {
		Fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl := NewController(service, ModeFromService(service), store, open)
	ctrl.Build(defs)
	defer ctrl.Close()

	if err := ctrl.Run(ctx); err != nil {
		Error("controller stopped: %v", err)
	}
	Info("%s exiting", service)
}
