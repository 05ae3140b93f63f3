package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"qexpand/internal/config"
	"qexpand/internal/feedback"
	"qexpand/internal/judge"
	"qexpand/internal/logger"
	"qexpand/internal/report"
	"qexpand/internal/rocchio"
)

const (
	exitRuntime = 1
	exitConfig  = 2
	exitFailed  = 3
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "qexpand:", err)
		code := exitRuntime
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			code = ec.ExitCode()
		}
		stop()
		os.Exit(code)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "qexpand",
		Usage:     "Refine a web query with relevance feedback until a target precision is reached",
		UsageText: usageLine,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (optional; uses ./qexpand.yaml or ~/.config/qexpand/config.yaml if not provided)",
			},
			&cli.StringFlag{
				Name:  "judge",
				Usage: "How to collect judgments: tui or line (overrides config)",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "Search provider: google, elasticsearch or fixture (overrides config)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "judgments",
				Usage: "Answer prompts from a script of Y/N letters instead of asking",
			},
		},
		Action:         run,
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func run(c *cli.Context) error {
	inv, err := parseInvocation(c.Args().Slice())
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "Usage: %s\n", usageLine)
		return cli.Exit(err, exitConfig)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}

	log, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}
	defer func() { _ = log.Sync() }()

	stop, err := loadStopWords(cfg)
	if err != nil {
		return cli.Exit(fmt.Errorf("load stop words: %w", err), exitConfig)
	}
	provider, params, err := buildProvider(cfg, inv, log)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}
	j, err := buildJudge(cfg.Judge.Type, c.String("judgments"), c.App.Reader, c.App.Writer)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}

	loop, err := feedback.NewLoop(provider, j, feedback.Config{
		StopWords:       stop,
		ResultsPerRound: cfg.Search.ResultsPerRound,
		TermsPerRound:   cfg.Feedback.TermsPerRound,
		Coefficients: rocchio.Coefficients{
			Alpha: cfg.Feedback.Alpha,
			Beta:  cfg.Feedback.Beta,
			Gamma: cfg.Feedback.Gamma,
		},
	},
		feedback.WithLogger(log),
		feedback.WithObserver(report.NewConsole(c.App.Writer, params)),
	)
	if err != nil {
		return cli.Exit(err, exitConfig)
	}

	out, err := loop.Run(c.Context, inv.Query, inv.Precision)
	if err != nil {
		log.Error("feedback run aborted", zap.String("run_id", out.RunID), zap.Error(err))
		return cli.Exit(err, exitRuntime)
	}
	log.Debug("feedback run complete",
		zap.String("run_id", out.RunID),
		zap.Stringer("status", out.Status),
		zap.Int("rounds", len(out.Rounds)),
	)
	if s, ok := j.(*judge.Scripted); ok && s.Remaining() > 0 {
		log.Warn("scripted judgments left unused", zap.Int("remaining", s.Remaining()))
	}
	if out.Status.Failed() {
		return cli.Exit(fmt.Sprintf("run ended with %s", out.Status), exitFailed)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	var cfg *config.AppConfig
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if s := c.String("search"); s != "" && s != cfg.Search.Type {
		cfg.Search.Type = s
		cfg.ApplyDefaults()
	}
	if j := c.String("judge"); j != "" {
		cfg.Judge.Type = j
	}
	if l := c.String("log-level"); l != "" {
		cfg.Logging.Level = l
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
