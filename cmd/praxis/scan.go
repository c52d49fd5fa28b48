package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appgate "github.com/praxisops/praxis/application/gate"
	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/infrastructure/detectors"
	"github.com/praxisops/praxis/internal/config"
	"github.com/praxisops/praxis/internal/log"
)

// Scan exit codes.
const (
	exitPass        = 0
	exitFail        = 1
	exitConfigError = 2
)

func scanCmd() *cobra.Command {
	var (
		repo     string
		commit   string
		output   string
		failOn   string
		baseline string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a repository and evaluate the quality gate",
		Long: `Scan a repository with the configured detectors and emit the scan as JSON.

Exit codes:
  0  gate passed
  1  gate failed (threshold reached or a CRITICAL finding)
  2  configuration error (bad flags, unreadable baseline)`,
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(runScan(repo, commit, output, failOn, baseline))
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "Path to the repository to scan")
	cmd.Flags().StringVar(&commit, "commit", "", "Commit ref the scan describes")
	cmd.Flags().StringVar(&output, "output", "-", "Output file for the scan JSON, or - for stdout")
	cmd.Flags().StringVar(&failOn, "fail-on", "HIGH", "Severity threshold that fails the gate")
	cmd.Flags().StringVar(&baseline, "baseline", "", "Baseline JSON file of accepted finding fingerprints")
	_ = cmd.MarkFlagRequired("repo")
	_ = cmd.MarkFlagRequired("commit")

	return cmd
}

func runScan(repo, commit, output, failOn, baselinePath string) int {
	logger := log.New(log.FormatText, "WARN")

	threshold, err := severity.Parse(failOn)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}
	if _, err := os.Stat(repo); err != nil {
		fmt.Fprintf(os.Stderr, "repo %s: %v\n", repo, err)
		return exitConfigError
	}

	var base *gate.Baseline
	if baselinePath != "" {
		base, err = appgate.LoadBaseline(baselinePath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitConfigError
		}
	}

	service := appgate.NewService([]gate.Detector{
		detectors.NewVet(config.DefaultDetectorTimeout),
		detectors.NewGofmt(config.DefaultDetectorTimeout),
		detectors.NewGitleaks(config.DefaultDetectorTimeout),
	}, logger)

	scan, err := service.Scan(context.Background(), repo, commit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	if err := writeScan(scan, output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	if service.Verdict(scan, base, threshold) == gate.VerdictFail {
		return exitFail
	}
	return exitPass
}

func writeScan(scan gate.Scan, output string) error {
	raw, err := json.MarshalIndent(scan, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scan: %w", err)
	}
	raw = append(raw, '\n')

	if output == "-" || output == "" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(output, raw, 0o644); err != nil {
		return fmt.Errorf("write scan to %s: %w", output, err)
	}
	return nil
}
