package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/internal/dashboard"
)

var (
	watchOnceFlag  bool
	reviewPageFlag int
	reviewIDFlag   string
	reviewRoleFlag string
)

// laundry pricing:watch
var pricingWatchCmd = &cobra.Command{
	Use:   "pricing:watch",
	Short: "Poll the four service prices and print them as they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		interval := config.PollInterval()
		board := dashboard.NewPricingBoard(dashboard.FromConfig(), interval)
		if watchOnceFlag {
			err := board.Refresh(ctx)
			printSnapshot(board.Snapshot())
			return err
		}

		go board.Run(ctx)
		var last string
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				snap := board.Snapshot()
				if joined := strings.Join(snap, "|"); joined != last {
					last = joined
					printSnapshot(snap)
				}
			}
		}
	},
}

func printSnapshot(lines []string) {
	fmt.Println(time.Now().Format("15:04:05"))
	for _, l := range lines {
		fmt.Println("  " + l)
	}
}

// laundry pricing:update <serviceType> <newCost>
var pricingUpdateCmd = &cobra.Command{
	Use:   "pricing:update <serviceType> <newCost>",
	Short: "Change the default cost of a service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		form := dashboard.NewPricingForm(dashboard.FromConfig())
		form.SetServiceType(args[0])
		form.SetNewCost(args[1])
		notice, err := form.Submit(ctx)
		if err != nil {
			return err
		}
		fmt.Println(notice)
		return nil
	},
}

// laundry review
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show a page of the archived review table, optionally changing a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		review := dashboard.NewReview(dashboard.FromConfig())
		if err := review.Load(ctx); err != nil {
			return err
		}

		if reviewIDFlag != "" {
			if reviewRoleFlag == "" {
				return errors.New("--role is required with --id")
			}
			review.Select(reviewIDFlag)
			review.SetRole(reviewRoleFlag)
			notice, err := review.Commit(ctx)
			if err != nil {
				return err
			}
			fmt.Println(notice)
		}

		review.Pagination().SetPage(reviewPageFlag)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tPHONE\tROLE")
		for _, u := range review.Page() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID.Hex(), u.Username, u.Email, u.PhoneNumber, u.Role)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		links := dashboard.PageLinks(len(review.Users()))
		pages := make([]string, len(links))
		for i, n := range links {
			if n == review.Pagination().Current() {
				pages[i] = fmt.Sprintf("[%d]", n)
			} else {
				pages[i] = fmt.Sprint(n)
			}
		}
		fmt.Println("pages:", strings.Join(pages, " "))
		return nil
	},
}

// laundry gcash:upload <file>
var gcashUploadCmd = &cobra.Command{
	Use:   "gcash:upload <file>",
	Short: "Upload a GCash QR image and add it as a new entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		board := dashboard.NewGcashBoard(dashboard.FromConfig())
		if _, err := board.Upload(ctx, filepath.Base(args[0]), data); err != nil {
			if errors.Is(err, dashboard.ErrNotImage) {
				return errors.New(dashboard.NotImageMessage)
			}
			return err
		}
		notice, err := board.Add(ctx)
		if err != nil {
			return err
		}
		fmt.Println(notice)
		return nil
	},
}

func init() {
	pricingWatchCmd.Flags().BoolVar(&watchOnceFlag, "once", false, "Fetch once and exit")
	reviewCmd.Flags().IntVarP(&reviewPageFlag, "page", "p", 1, "Page to show")
	reviewCmd.Flags().StringVar(&reviewIDFlag, "id", "", "Order id to edit")
	reviewCmd.Flags().StringVar(&reviewRoleFlag, "role", "", "New role for --id")
}
