package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/jobscout/internal/app"
	"github.com/okian/jobscout/internal/domain/model"
	"github.com/okian/jobscout/internal/domain/session"
	"github.com/okian/jobscout/pkg/logger"
)

// ErrSessionFailed is returned when a one-shot search ends in failure.
var ErrSessionFailed = errors.New("search failed")

type searchFlags struct {
	cfgPath  string
	resume   string
	location string
	minMatch int
	maxAge   int
	noRemote bool
	mode     string
}

func searchCmd() *cobra.Command {
	var f searchFlags
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run one search and print ranked postings as JSON",
		Example: "  jobscout search --resume cv.txt --location Poland --min-match 60\n" +
			"  cat cv.txt | jobscout search --resume - --location Krakow --no-remote --mode basic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, f.cfgPath)
			if err != nil {
				return err
			}
			resume, err := readResume(cmd.InOrStdin(), f.resume)
			if err != nil {
				return err
			}

			params := defaultParams(cfg)
			flags := cmd.Flags()
			if flags.Changed("location") {
				params.Location = f.location
			}
			if flags.Changed("min-match") {
				params.MinMatch = f.minMatch
			}
			if flags.Changed("max-age") {
				params.MaxAgeDays = f.maxAge
			}
			if flags.Changed("no-remote") {
				params.IncludeRemote = !f.noRemote
			}
			if flags.Changed("mode") {
				params.ScraperMode = model.ScraperMode(f.mode)
			}

			log := logger.Get()
			w, err := buildService(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = w.Close() }()

			if err := w.svc.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = w.svc.Stop(stopCtx)
			}()

			return runSearch(ctx, w.svc, params, resume, cmd.OutOrStdout(), log)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.cfgPath, "config", "c", "", "YAML config file (overrides JOBSCOUT_CONFIG)")
	fl.StringVarP(&f.resume, "resume", "r", "", "resume text file, - for stdin")
	fl.StringVarP(&f.location, "location", "l", "", "country or city to search")
	fl.IntVar(&f.minMatch, "min-match", 0, "minimum match score (0-100)")
	fl.IntVar(&f.maxAge, "max-age", 0, "maximum posting age in days")
	fl.BoolVar(&f.noRemote, "no-remote", false, "skip remote postings")
	fl.StringVar(&f.mode, "mode", "", "scraper mode: enhanced or basic")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func readResume(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(b), nil
}

// runSearch submits one session, logs its progress and writes the ranked
// rows to out. Cancelling ctx cuts the session short; whatever was collected
// is still printed.
func runSearch(ctx context.Context, svc *service.Service, params model.Parameters, resume string, out io.Writer, log logger.Logger) error {
	sess, err := svc.Submit(ctx, params, resume)
	if err != nil {
		return err
	}

	stream, unsubscribe, err := svc.Subscribe(ctx, sess.ID)
	if err != nil {
		return err
	}
	defer unsubscribe()

	started := time.Now()
	go func() {
		for e := range stream {
			logProgress(ctx, log, e)
		}
	}()
	stopCancel := context.AfterFunc(ctx, func() {
		_ = svc.Cancel(context.WithoutCancel(ctx), sess.ID)
	})
	defer stopCancel()

	final, err := svc.Wait(context.WithoutCancel(ctx), sess.ID)
	if err != nil {
		return err
	}
	log.Info(ctx, "search finished",
		logger.String("session", final.ID),
		logger.String("status", string(final.Status)),
		logger.Int("results", len(final.Results)),
		logger.Bool("cancelled", final.Cancelled),
		logger.Duration("elapsed", time.Since(started)),
	)
	for _, d := range final.Diagnostics {
		log.Warn(ctx, "source diagnostic",
			logger.String("source", d.Source),
			logger.String("strategy", d.Strategy),
			logger.String("location", d.Location),
			logger.String("reason", d.Reason),
		)
	}
	if final.Status == session.StatusFailed {
		return fmt.Errorf("%w: %s", ErrSessionFailed, final.Cause)
	}

	rows, err := svc.Results(context.WithoutCancel(ctx), final.ID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func logProgress(ctx context.Context, log logger.Logger, e model.Event) {
	switch p := e.Payload.(type) {
	case model.StartedPayload:
		log.Info(ctx, "search started",
			logger.Int("tasks", p.Tasks),
			logger.Strings("sources", p.Sources),
			logger.Strings("locations", p.Variants),
		)
	case model.ProgressPayload:
		log.Info(ctx, "source finished",
			logger.String("source", p.Source),
			logger.String("location", p.Location),
			logger.Int("fetched", p.Fetched),
			logger.Int("done", p.Done),
			logger.Int("total", p.Total),
		)
	}
}
