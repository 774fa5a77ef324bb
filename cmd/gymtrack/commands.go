package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/2beens/gymtrack/internal/resolver"
	"github.com/2beens/gymtrack/internal/sessions"
	"github.com/2beens/gymtrack/internal/stats"
	"github.com/2beens/gymtrack/pkg"
)

var errUnknownCommand = errors.New("unknown command")

type app struct {
	dataDir  string
	resolver *resolver.Resolver
	repo     *sessions.Repository
	now      func() time.Time
}

func (a *app) run(ctx context.Context, args []string, out io.Writer) error {
	switch args[0] {
	case "list":
		return a.list(ctx, args[1:], out)
	case "stats":
		return a.printStats(ctx, out)
	case "resolve":
		return a.resolve(args[1:], out)
	case "sync":
		return a.sync(ctx, out)
	case "backup":
		return a.backup(args[1:], out)
	case "hash-password":
		return hashPassword(args[1:], out)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, args[0])
	}
}

func (a *app) list(ctx context.Context, args []string, out io.Writer) error {
	all, err := a.repo.GetSessions(ctx)
	if err != nil {
		return err
	}

	day := ""
	if len(args) > 0 {
		day = a.resolver.ResolveDayID(strings.Join(args, " "))
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDAY\tDURATION\tVOLUME\tID")
	for _, s := range all {
		if day != "" && s.Day != day {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.Date.Local().Format("2006-01-02 15:04"),
			s.Day,
			stats.FormatDuration(s.Duration),
			stats.FormatVolume(stats.Volume(s)),
			s.ID,
		)
	}
	return w.Flush()
}

func (a *app) printStats(ctx context.Context, out io.Writer) error {
	all, err := a.repo.GetSessions(ctx)
	if err != nil {
		return err
	}

	streak := stats.Streaks(all, a.now())
	fmt.Fprintf(out, "sessions:       %d\n", len(all))
	fmt.Fprintf(out, "current streak: %d\n", streak.Current)
	fmt.Fprintf(out, "longest streak: %d\n", streak.Longest)
	fmt.Fprintf(out, "this week:      %d\n", streak.ThisWeek)
	if volume := stats.FormatVolume(stats.TotalVolume(all)); volume != "" {
		fmt.Fprintf(out, "total volume:   %s\n", volume)
	}

	records := stats.PersonalRecords(all)
	if len(records) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "EXERCISE\tWEIGHT\tREPS\tDATE")
	for _, pr := range records {
		fmt.Fprintf(w, "%s\t%g\t%g\t%s\n", pr.ExerciseID, pr.Weight, pr.Reps, pr.Date.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func (a *app) resolve(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("resolve: name missing")
	}
	for _, raw := range args {
		fmt.Fprintf(out, "%q\tday=%s\texercise=%s\n", raw, a.resolver.ResolveDayID(raw), a.resolver.ResolveExerciseID(raw))
	}
	return nil
}

func (a *app) sync(ctx context.Context, out io.Writer) error {
	pushed, err := a.repo.SyncPending(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "pushed %d sessions\n", pushed)
	return nil
}

func (a *app) backup(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("backup: output file missing")
	}

	exists, err := pkg.DirExists(a.dataDir)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("backup: data dir [%s] not found", a.dataDir)
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := pkg.ArchiveDir(a.dataDir, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "backup written to %s\n", args[0])
	return nil
}

func hashPassword(args []string, out io.Writer) error {
	if len(args) != 1 {
		return errors.New("hash-password: expects exactly one password")
	}
	hash, err := pkg.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}
