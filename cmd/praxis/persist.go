package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/infrastructure/persistence"
	"github.com/praxisops/praxis/internal/database"
)

func persistCmd() *cobra.Command {
	var (
		input string
		dbURL string
	)

	cmd := &cobra.Command{
		Use:   "persist",
		Short: "Store a scan JSON in the document store",
		Long: `Read a scan produced by "praxis scan" and insert it into the document
store, printing the inserted id. The input is a file path or - for stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPersist(input, dbURL)
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "Scan JSON file, or - for stdin")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "Document store DSN (defaults to DOCUMENT_STORE_URI)")

	return cmd
}

func runPersist(input, dbURL string) error {
	raw, err := readInput(input)
	if err != nil {
		return err
	}
	var scan gate.Scan
	if err := json.Unmarshal(raw, &scan); err != nil {
		return fmt.Errorf("parse scan: %w", err)
	}

	if dbURL == "" {
		dbURL = os.Getenv("DOCUMENT_STORE_URI")
	}
	if dbURL == "" {
		return fmt.Errorf("no document store configured: pass --db-url or set DOCUMENT_STORE_URI")
	}

	ctx := context.Background()
	db, err := database.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := persistence.AutoMigrate(db); err != nil {
		return err
	}

	id, err := persistence.NewScanStore(db).SaveScan(ctx, scan)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func readInput(input string) ([]byte, error) {
	if input == "-" || input == "" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	return raw, nil
}
