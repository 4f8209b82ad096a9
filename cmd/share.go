package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/httpapi"
	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/report"
)

var (
	shareMonth  string
	shareFormat string
	shareListen string
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Publish read-only month snapshots",
}

var shareCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Freeze a month into a share link (regenerating replaces it)",
	Args:  cobra.NoArgs,
	RunE:  runShareCreate,
}

var shareRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Disable one of your share links",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareRevoke,
}

var shareShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a shared month",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareShow,
}

var shareServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve share links over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runShareServe,
}

func init() {
	shareCreateCmd.Flags().StringVar(&shareMonth, "month", "", "Month to share (YYYY-MM, default current)")
	shareShowCmd.Flags().StringVar(&shareFormat, "format", "totals", "Output format: totals, teams, summary")
	shareServeCmd.Flags().StringVar(&shareListen, "listen", "", "Listen address (default share.listen from config)")

	shareCmd.AddCommand(shareCreateCmd)
	shareCmd.AddCommand(shareRevokeCmd)
	shareCmd.AddCommand(shareShowCmd)
	shareCmd.AddCommand(shareServeCmd)
}

func shareURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/s/" + id
}

func runShareCreate(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	u := e.user()
	m := monthFlag(shareMonth)

	snap, err := e.shares.Create(cmd.Context(), u.ID, u.DisplayName(), m)
	check(err)
	fmt.Printf("Shared %s (%d days)\n", snap.MonthName, len(snap.Logs))
	fmt.Printf("Link:    %s\n", shareURL(e.cfg.Share.BaseURL, snap.ID))
	fmt.Printf("Expires: %s\n", snap.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func runShareRevoke(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	check(e.shares.Revoke(cmd.Context(), e.user().ID, args[0]))
	fmt.Println("Share link disabled.")
	return nil
}

// runShareShow needs no sign-in: anyone holding the link may read it.
func runShareShow(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	snap, err := e.shares.Fetch(cmd.Context(), args[0])
	check(err)

	switch shareFormat {
	case "teams":
		fmt.Print(render.Teams(snap.MonthName, report.Rows(snap.Logs)))
	case "summary":
		fmt.Print(render.Summary(snap.MonthName, report.SummaryByProject(snap.Logs)))
	case "totals":
		fmt.Printf("%s · %s\n", snap.UserName, snap.MonthName)
		fmt.Printf("Expires %s\n\n", snap.ExpiresAt.Local().Format(time.DateTime))
		fmt.Print(render.Totals(report.HoursTotals(snap.Logs)))
	default:
		fail(fmt.Errorf("unknown format %q, want totals, teams or summary", shareFormat))
	}
	return nil
}

func runShareServe(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	addr := shareListen
	if addr == "" {
		addr = e.cfg.Share.Listen
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	srv := httpapi.NewServer(e.shares, reg, e.logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(addr) }()
	fmt.Fprintf(os.Stderr, "Serving share links on http://%s (Ctrl+C to stop)\n", addr)

	select {
	case err := <-errc:
		if err != nil {
			failStorage(fmt.Errorf("share server: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.logger.Warn("share server shutdown", zap.Error(err))
	}
	return nil
}
