package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cruffinoni/errgen/internal/config"
	"github.com/cruffinoni/errgen/internal/emit"
	"github.com/cruffinoni/errgen/internal/fswalk"
	"github.com/cruffinoni/errgen/internal/gencheck"
	"github.com/cruffinoni/errgen/internal/parser"
	"github.com/cruffinoni/errgen/internal/report"
)

func writeReports(cfg config.Config, summary report.Summary, files []report.FileItem) error {
	if cfg.ReportJSON != "" {
		if err := report.WriteJSON(cfg.ReportJSON, report.NewJSONReport(summary, files)); err != nil {
			return err
		}
	}
	if cfg.ReportCSV != "" {
		if err := report.WriteCSV(cfg.ReportCSV, files); err != nil {
			return err
		}
	}
	return nil
}

func runGenerate(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := fswalk.DiscoverSources(cfg.In, cfg.Glob, cfg.Suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no Go files matched %q under %q", cfg.Glob, cfg.In)
	}

	generator := emit.NewGenerator()
	var (
		generated        int
		noDirectives     int
		generationFailed int
		checkFailed      int
		written          int

		fileItems = make([]report.FileItem, 0, len(files))

		stopErr  error
		stopCode = ExitCodeSuccess
	)

	for _, f := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		raw, err := os.ReadFile(f.AbsPath)
		if err != nil {
			return fmt.Errorf("read %q: %w", f.AbsPath, err)
		}

		item := report.FileItem{
			File: f.RelPath,
		}

		parsed, err := parser.ParseFile(f.RelPath, raw)
		var output []byte
		if err == nil {
			for _, input := range parsed.Inputs {
				item.Types = append(item.Types, input.Name())
			}
			output, err = generator.Generate(parsed)
		}
		if err != nil {
			generationFailed++
			item.Status = report.StatusGenerationError
			item.Diagnostics = []report.DiagnosticItem{report.ToDiagnosticItem(f.RelPath, err)}
			fileItems = append(fileItems, item)
			slog.Warn("generation failed", "file", f.RelPath, "error", err)
			if cfg.Strict {
				stopErr = fmt.Errorf("generation failed on %s: %w", f.RelPath, err)
				stopCode = ExitCodeGenerationFailed
				break
			}
			continue
		}

		if output == nil {
			noDirectives++
			item.Status = report.StatusNoDirectives
			fileItems = append(fileItems, item)
			slog.Debug("no directives", "file", f.RelPath)
			continue
		}

		companion := fswalk.CompanionPath(f.RelPath, cfg.Suffix)
		item.Companion = companion
		item.Checked = true

		if err := gencheck.Verify(companion, output); err != nil {
			checkFailed++
			item.Status = report.StatusCheckError
			item.Diagnostics = []report.DiagnosticItem{report.ToDiagnosticItem(f.RelPath, err)}
			fileItems = append(fileItems, item)
			slog.Warn("generated-code check failed", "file", f.RelPath, "error", err)
			if cfg.Strict {
				stopErr = fmt.Errorf("generated-code check failed on %s: %w", f.RelPath, err)
				stopCode = ExitCodeValidationFailed
				break
			}
			continue
		}

		item.Status = report.StatusGenerated
		if !cfg.DryRun {
			outPath := fswalk.CompanionPath(f.AbsPath, cfg.Suffix)
			if err := fswalk.EnsureParentDir(outPath); err != nil {
				return fmt.Errorf("prepare output path %q: %w", outPath, err)
			}
			if err := os.WriteFile(outPath, output, 0o644); err != nil {
				return fmt.Errorf("write companion %q: %w", outPath, err)
			}
			item.Written = true
			written++
		}
		generated++
		fileItems = append(fileItems, item)
	}

	slog.Info(
		"generation summary",
		"discovered",
		len(files),
		"generated",
		generated,
		"no_directives",
		noDirectives,
		"generation_failed",
		generationFailed,
		"check_failed",
		checkFailed,
		"written",
		written,
		"input",
		cfg.In,
		"dry_run",
		cfg.DryRun,
	)

	summary := report.Summary{
		Discovered:       len(files),
		Generated:        generated,
		NoDirectives:     noDirectives,
		GenerationFailed: generationFailed,
		CheckFailed:      checkFailed,
		Written:          written,
	}

	if err := writeReports(cfg, summary, fileItems); err != nil {
		return fmt.Errorf("write report artifacts: %w", err)
	}
	if cfg.ReportJSON != "" || cfg.ReportCSV != "" {
		slog.Info("reports written", "json", cfg.ReportJSON, "csv", cfg.ReportCSV)
	}

	if stopErr != nil {
		return newExitError(stopCode, stopErr)
	}

	if generationFailed > 0 {
		return newExitError(ExitCodeGenerationFailed, fmt.Errorf("generation finished with %d failed files", generationFailed))
	}
	if checkFailed > 0 {
		return newExitError(ExitCodeValidationFailed, fmt.Errorf("validation finished with check_failed=%d", checkFailed))
	}

	return nil
}
