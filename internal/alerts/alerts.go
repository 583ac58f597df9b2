// Package alerts reports scrapers that keep failing. Alert text is
// always appended to a daily file under the data directory; outbound
// delivery goes through the Notifier interface.
package alerts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hearing-sync/internal/ledger"
)

// Notifier delivers an alert message to an external channel.
type Notifier interface {
	Notify(message string) error
}

// Checker ties the ledger's health table to alert output.
type Checker struct {
	Ledger    *ledger.Ledger
	DataDir   string
	Threshold int
	Notifiers []Notifier
}

// CheckAndAlert looks up failing scrapers and emits an alert when any
// are at or over the threshold. Returns the failing rows.
func (c *Checker) CheckAndAlert() ([]ledger.ScraperHealth, error) {
	failing, err := c.Ledger.GetFailingScrapers(c.Threshold)
	if err != nil {
		return nil, err
	}
	if len(failing) == 0 {
		slog.Debug("all scrapers healthy", "threshold", c.Threshold)
		return nil, nil
	}

	message := Format(failing)

	path, err := WriteAlertFile(c.DataDir, message)
	if err != nil {
		return failing, err
	}
	slog.Info("alert written", "path", path, "failing", len(failing))

	for _, n := range c.Notifiers {
		if err := n.Notify(message); err != nil {
			slog.Warn("alert delivery failed", "error", err)
		}
	}

	return failing, nil
}

// Format builds the human-readable alert body.
func Format(failing []ledger.ScraperHealth) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scraper Alert — %d source(s) failing\n", len(failing))
	fmt.Fprintf(&b, "Generated at %s UTC\n\n", time.Now().UTC().Format("2006-01-02 15:04:05"))

	for _, entry := range failing {
		lastSuccess := "never"
		if entry.LastSuccess.Valid && entry.LastSuccess.String != "" {
			lastSuccess = entry.LastSuccess.String
		}
		lastFailure := "unknown"
		if entry.LastFailure.Valid && entry.LastFailure.String != "" {
			lastFailure = entry.LastFailure.String
		}

		fmt.Fprintf(&b, "  %s / %s\n", entry.CommitteeKey, entry.SourceType)
		fmt.Fprintf(&b, "    Consecutive failures : %d\n", entry.ConsecutiveFailures)
		fmt.Fprintf(&b, "    Last success         : %s\n", lastSuccess)
		fmt.Fprintf(&b, "    Last failure         : %s\n\n", lastFailure)
	}

	return b.String()
}

// WriteAlertFile appends the message to <dataDir>/alerts/YYYY-MM-DD.txt
// and returns the file path.
func WriteAlertFile(dataDir, message string) (string, error) {
	alertsDir := filepath.Join(dataDir, "alerts")
	if err := os.MkdirAll(alertsDir, 0o755); err != nil {
		return "", fmt.Errorf("alerts: create dir: %w", err)
	}

	today := time.Now().UTC().Format("2006-01-02")
	path := filepath.Join(alertsDir, today+".txt")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("alerts: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(message + "\n---\n"); err != nil {
		return "", fmt.Errorf("alerts: write %s: %w", path, err)
	}
	return path, nil
}
