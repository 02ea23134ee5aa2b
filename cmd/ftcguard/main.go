// Command ftcguard runs the FTC disclosure compliance service: an HTTP
// gateway over the content pipeline, plus a one-shot file validator for
// CI use.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"ftcguard/internal/adapter/affiliate"
	"ftcguard/internal/adapter/gateway"
	"ftcguard/internal/adapter/llm"
	"ftcguard/internal/adapter/publish"
	"ftcguard/internal/adapter/voice"
	"ftcguard/internal/compliance"
	"ftcguard/internal/domain"
	"ftcguard/internal/infra/config"
	"ftcguard/internal/infra/logger"
	"ftcguard/internal/infra/secrets"
	"ftcguard/internal/infra/tracer"
	"ftcguard/internal/usecase"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		case "validate":
			if err := runValidate(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "validate: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`ftcguard - FTC disclosure compliance service

USAGE:
    ftcguard [COMMAND] [FLAGS]

COMMANDS:
    validate    Validate a content file and print the result as JSON
                Flags: -file PATH -platform NAME -type NAME

    (no command) - Run the HTTP gateway with the configured providers

CONFIG:
    Reads $FTCGUARD_CONFIG, or ~/.ftcguard/config.yaml when unset.
    FTCGUARD_* environment variables override file values.`)
}

func configPath() string {
	if v := os.Getenv("FTCGUARD_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "ftcguard.yaml"
	}
	return filepath.Join(home, ".ftcguard", "config.yaml")
}

func run() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	var resolver secrets.Resolver = secrets.NewEnvResolver()
	if cfg.Secrets.File != "" {
		fileResolver, err := secrets.NewFileResolver(cfg.Secrets.File)
		if err != nil {
			return fmt.Errorf("open secret store: %w", err)
		}
		resolver = secrets.NewChain(fileResolver, secrets.NewEnvResolver())
	}

	validator := compliance.NewValidator()
	injector := compliance.NewInjector(validator)

	texts, err := llm.BuildRegistry(ctx, cfg.Providers, resolver, log)
	if err != nil {
		return fmt.Errorf("build text providers: %w", err)
	}
	voiceProvider, err := voice.Build(ctx, cfg.Providers, filepath.Dir(cfg.Ledger.Path), resolver, log)
	if err != nil {
		return fmt.Errorf("build voice provider: %w", err)
	}
	products, err := affiliate.Build(ctx, cfg.Providers, resolver, log)
	if err != nil {
		return fmt.Errorf("build product provider: %w", err)
	}
	publisher, err := publish.Build(ctx, cfg.Providers, cfg.Compliance.AutoInject, validator, injector, resolver, log)
	if err != nil {
		return fmt.Errorf("build publisher: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Ledger.Path), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	ledger, err := usecase.NewLedger(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	pipeline := usecase.NewPipeline(texts, voiceProvider, publisher,
		validator, injector, ledger, cfg.Compliance, log)

	reports := usecase.NewReportScheduler(cfg.Reports, ledger, log)
	if cfg.Reports.Enabled {
		if err := reports.Start(); err != nil {
			return fmt.Errorf("start report scheduler: %w", err)
		}
		defer reports.Stop()
	}

	srv := gateway.NewServer(pipeline, ledger, reports, products, cfg.Server, log)
	return srv.Start(ctx)
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	file := fs.String("file", "", "content file to validate")
	platformName := fs.String("platform", "blog", "platform: youtube, tiktok, instagram, blog")
	typeName := fs.String("type", "", "content type: blog, video, social (default from platform)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	platform, err := domain.ParsePlatform(*platformName)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	validator := compliance.NewValidator()
	content := string(data)

	var result domain.ValidationResult
	switch *typeName {
	case "video":
		result = validator.ValidateVideoScript(content)
	case "social":
		result = validator.ValidateSocialCaption(content, platform)
	case "", "blog":
		result = validator.Validate(content)
	default:
		return fmt.Errorf("unknown content type %q", *typeName)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if !result.IsValid {
		os.Exit(2)
	}
	return nil
}
