// Command seed fills a database with the initial site content.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/harvestcms/internal/config"
	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/logging"
	"github.com/harvestcms/internal/seed"
	flag "github.com/spf13/pflag"
	"gorm.io/gorm/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	cfg := config.Load()

	flags := flag.NewFlagSet("seed", flag.ContinueOnError)
	flags.SetOutput(errOut)
	dbPath := flags.StringP("database", "d", cfg.DatabasePath, "sqlite database path")
	file := flags.StringP("file", "f", "", "seed YAML file (default: embedded site defaults)")
	overwrite := flags.Bool("overwrite", false, "replace stored sections and settings")
	logLevel := flags.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	ll := &slog.LevelVar{}
	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	ll.Set(level)
	slog.SetDefault(slog.New(logging.NewHandler(errOut, ll)))

	doc, err := load(*file)
	if err != nil {
		slog.Error("failed to load seed", "error", err)
		return 1
	}

	gdb, err := db.Open(*dbPath, logger.Warn)
	if err != nil {
		slog.Error("failed to open database", "path", *dbPath, "error", err)
		return 1
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}

	res, err := seed.Apply(context.Background(), gdb, doc, seed.Options{Overwrite: *overwrite})
	if err != nil {
		slog.Error("seed failed", "error", err)
		return 1
	}
	fmt.Fprintf(out, "pages=%d sections=%d settings=%d programs=%d\n", res.Pages, res.Sections, res.Settings, res.Programs)
	return 0
}

func load(path string) (*seed.File, error) {
	if path == "" {
		return seed.Defaults()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Parse(f)
}
