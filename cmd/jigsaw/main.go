package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/jigsaw/internal/app"
	"github.com/vk/jigsaw/internal/cli"
	"github.com/vk/jigsaw/internal/config"
	"github.com/vk/jigsaw/internal/hcl"
	"github.com/vk/jigsaw/internal/yaml"
)

// main is the entrypoint for the jigsaw application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling. Results go to outW; usage text and logs go to errW.
func run(outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	loader := config.NewMultiLoader(hcl.NewLoader(), yaml.NewLoader())
	jigsawApp, err := app.NewApp(outW, errW, appConfig, loader)
	if err != nil {
		return err
	}

	return jigsawApp.Run(context.Background())
}
