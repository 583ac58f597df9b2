// Command hearingsync discovers congressional hearings, reconciles
// them against the processing ledger, and exports snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hearing-sync/internal/alerts"
	"hearing-sync/internal/config"
	"hearing-sync/internal/export"
	"hearing-sync/internal/ledger"
	"hearing-sync/internal/logx"
	"hearing-sync/internal/pipeline"
	"hearing-sync/internal/sftpclient"
	"hearing-sync/internal/sources"
	"hearing-sync/internal/sources/congress"
	"hearing-sync/internal/sources/govinfo"
)

var (
	cfg    config.Config
	dbPath string
)

func main() {
	cfg = config.Load()

	root := &cobra.Command{
		Use:   "hearingsync",
		Short: "Congressional hearing discovery and ledger",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logx.Init(cfg.LogLevel, cfg.LogFormat)
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
		},
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the ledger database (default from HEARING_DB_PATH)")

	root.AddCommand(discoverCmd(), statusCmd(), healthCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openLedger() (*ledger.Ledger, error) {
	return ledger.Open(cfg.DBPath)
}

func discoverCmd() *cobra.Command {
	var days, tier int

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Poll all sources and reconcile hearings into the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg, err := config.LoadRegistry(cfg.CommitteesPath)
			if err != nil {
				return err
			}
			if tier > 0 {
				filtered := config.Registry{}
				for _, key := range reg.Filter(tier) {
					filtered[key] = reg[key]
				}
				reg = filtered
			}

			l, err := openLedger()
			if err != nil {
				return err
			}
			defer l.Close()

			runner := &pipeline.Runner{
				Cfg:    cfg,
				Ledger: l,
				Sources: []sources.HearingSource{
					govinfo.New(cfg, reg),
					congress.New(cfg, reg),
				},
			}

			sum, err := runner.Run(ctx, days)
			if err != nil {
				return err
			}
			fmt.Printf("discovered=%d deduped=%d migrated=%d persisted=%d source_errors=%d\n",
				sum.Discovered, sum.Deduped, sum.Migrated, sum.Persisted, sum.SourceErrs)

			checker := &alerts.Checker{
				Ledger:    l,
				DataDir:   cfg.DataDir,
				Threshold: cfg.FailureThreshold,
			}
			failing, err := checker.CheckAndAlert()
			if err != nil {
				return err
			}
			if len(failing) > 0 {
				fmt.Printf("WARNING: %d scraper(s) failing\n", len(failing))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", cfg.LookbackDays, "lookback window in days")
	cmd.Flags().IntVar(&tier, "tier", 0, "restrict to committees at or below this tier (0 = all)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show unprocessed hearings",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger()
			if err != nil {
				return err
			}
			defer l.Close()

			all, err := l.ListHearings()
			if err != nil {
				return err
			}
			pending, err := l.GetUnprocessedHearings()
			if err != nil {
				return err
			}

			fmt.Printf("hearings: %d total, %d unprocessed\n\n", len(all), len(pending))
			for _, h := range pending {
				fmt.Printf("  %s  %s  %-28s %s\n", h.ID, h.Date, h.CommitteeKey, h.Title)
			}
			return nil
		},
	}
}

func healthCmd() *cobra.Command {
	var threshold int

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show failing scrapers",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger()
			if err != nil {
				return err
			}
			defer l.Close()

			failing, err := l.GetFailingScrapers(threshold)
			if err != nil {
				return err
			}
			if len(failing) == 0 {
				fmt.Println("all scrapers healthy")
				return nil
			}
			fmt.Print(alerts.Format(failing))
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", cfg.FailureThreshold, "consecutive failures before a scraper counts as failing")
	return cmd
}

func exportCmd() *cobra.Command {
	var outDir string
	var upload bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write CSV and compressed JSON snapshots of the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := openLedger()
			if err != nil {
				return err
			}
			defer l.Close()

			records, err := l.ListHearings()
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = filepath.Join(cfg.DataDir, "exports")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			stamp := time.Now().UTC().Format("2006-01-02")

			csvPath := filepath.Join(outDir, "hearings-"+stamp+".csv")
			csvFile, err := os.Create(csvPath)
			if err != nil {
				return err
			}
			if err := export.WriteHearingsCSV(csvFile, records); err != nil {
				csvFile.Close()
				return err
			}
			if err := csvFile.Close(); err != nil {
				return err
			}

			arcPath := filepath.Join(outDir, "hearings-"+stamp+".json.br")
			arcFile, err := os.Create(arcPath)
			if err != nil {
				return err
			}
			if err := export.WriteArchive(arcFile, records); err != nil {
				arcFile.Close()
				return err
			}
			if err := arcFile.Close(); err != nil {
				return err
			}

			fmt.Printf("wrote %s and %s (%d hearings)\n", csvPath, arcPath, len(records))

			if upload {
				sftpCfg := sftpclient.Config{
					Host:      cfg.SFTPHost,
					Port:      cfg.SFTPPort,
					User:      cfg.SFTPUser,
					Pass:      cfg.SFTPPass,
					RemoteDir: cfg.SFTPRemoteDir,
				}
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				if err := sftpclient.UploadFile(ctx, sftpCfg, arcPath, filepath.Base(arcPath)); err != nil {
					return err
				}
				fmt.Println("uploaded archive to", cfg.SFTPHost)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default <data dir>/exports)")
	cmd.Flags().BoolVar(&upload, "upload", false, "upload the archive over SFTP after writing")
	return cmd
}
