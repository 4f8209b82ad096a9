package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tiliavir/daylog/internal/logging"
	"github.com/Tiliavir/daylog/internal/monthindex"
	"github.com/Tiliavir/daylog/internal/render"
	"github.com/Tiliavir/daylog/internal/timecalc"
)

var (
	watchMonth    string
	watchCalendar bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a month and redraw it whenever its entries change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchMonth, "month", "", "Month to watch (YYYY-MM, default current)")
	watchCmd.Flags().BoolVar(&watchCalendar, "calendar", false, "Show the calendar grid instead of the list")
}

const clearScreen = "\033[H\033[2J"

func runWatch(cmd *cobra.Command, args []string) error {
	e := mustEnv()
	uid := e.user().ID
	m := monthFlag(watchMonth)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idx := monthindex.New(m)
	done := make(chan error, 1)
	go func() { done <- idx.Subscribe(ctx, e.store, uid) }()

	st := render.DefaultStyles()
	for {
		select {
		case <-idx.Updates():
			fmt.Print(clearScreen)
			if watchCalendar {
				fmt.Println(st.Calendar(m, idx.Logs(), timecalc.DateKey(time.Now())))
			} else {
				fmt.Println(st.Header.Render(m.MonthName()))
				fmt.Println(st.List(m, idx.Logs()))
			}
			fmt.Println(st.Muted.Render(fmt.Sprintf("%d days logged · update %d · Ctrl+C to stop", idx.Len(), idx.Version())))
		case err := <-done:
			if err != nil {
				e.logger.Error("month subscription failed", logging.UserID(uid), logging.Month(m.String()), zap.Error(err))
				failStorage(err)
			}
			return nil
		}
	}
}
