package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/msomdec/study-zen/internal/config"
	"github.com/msomdec/study-zen/internal/domain"
	"github.com/msomdec/study-zen/internal/repository/sqlite"
	"github.com/msomdec/study-zen/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "studyzenctl: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are shared by every subcommand.
type globalOptions struct {
	dbPath string
	loc    *time.Location
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "studyzenctl",
		Short:         "Inspect and maintain a StudyZen database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("db") {
				opts.dbPath = cfg.DatabasePath
			}
			opts.loc = cfg.Location
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")
	cmd.AddCommand(newSessionsCmd(opts))
	cmd.AddCommand(newStatsCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))
	return cmd
}

func newSessionsCmd(opts *globalOptions) *cobra.Command {
	var (
		email      string
		day        string
		formatFlag string
		header     bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List a user's completed focus sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if day != "" {
				if _, err := time.Parse(domain.DateKeyLayout, day); err != nil {
					return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", day)
				}
			}

			ctx := cmd.Context()
			db, user, err := openForUser(ctx, opts.dbPath, email)
			if err != nil {
				return err
			}
			defer db.Close()

			sessions := service.NewSessionService(db.Sessions())
			var records []domain.SessionRecord
			if day != "" {
				records, err = sessions.ListForDay(ctx, user.ID, day)
			} else {
				records, err = sessions.ListByUser(ctx, user.ID)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(formatFlag) {
			case "json":
				return writeJSON(out, records)
			case "table":
				showHeader := header || isTerminal(out)
				return writeSessionTable(out, records, showHeader)
			default:
				return fmt.Errorf("unknown --format %q (want table or json)", formatFlag)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&email, "email", "", "account email (required)")
	flags.StringVar(&day, "date", "", "only sessions on this day (YYYY-MM-DD)")
	flags.StringVar(&formatFlag, "format", "table", "output format: table or json")
	flags.BoolVar(&header, "header", false, "print the table header even when not writing to a terminal")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session totals and the current streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, user, err := openForUser(ctx, opts.dbPath, email)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := service.NewSessionService(db.Sessions()).Stats(ctx, user.ID, time.Now().In(opts.loc))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sessions:      %d\n", stats.TotalSessions)
			fmt.Fprintf(out, "Today:         %d\n", stats.SessionsToday)
			fmt.Fprintf(out, "Focus minutes: %d\n", stats.TotalMinutes)
			fmt.Fprintf(out, "Streak (days): %d\n", stats.CurrentStreak)
			if stats.LastSessionDay != "" {
				fmt.Fprintf(out, "Last session:  %s\n", stats.LastSessionDay)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context(), opts.dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", opts.dbPath)
			return nil
		},
	}
}

func openDB(ctx context.Context, path string) (domain.Store, error) {
	if path == "" {
		return nil, errors.New("no database path: set --db or DATABASE_PATH")
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func openForUser(ctx context.Context, path, email string) (domain.Store, *domain.User, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	user, err := db.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		db.Close()
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("no account with email %q", email)
		}
		return nil, nil, fmt.Errorf("look up user: %w", err)
	}
	return db, user, nil
}

func writeSessionTable(w io.Writer, records []domain.SessionRecord, header bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if header {
		fmt.Fprintln(tw, "ID\tDATE\tTYPE\tMINUTES")
	}
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", r.ID, r.Date, r.Type, r.DurationMinutes)
	}
	return tw.Flush()
}

type sessionJSON struct {
	ID              int64  `json:"id"`
	Date            string `json:"date"`
	Type            string `json:"type"`
	DurationMinutes int    `json:"durationMinutes"`
	CreatedAt       string `json:"createdAt"`
}

func writeJSON(w io.Writer, records []domain.SessionRecord) error {
	out := make([]sessionJSON, len(records))
	for i, r := range records {
		out[i] = sessionJSON{
			ID:              r.ID,
			Date:            r.Date,
			Type:            r.Type,
			DurationMinutes: r.DurationMinutes,
			CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
