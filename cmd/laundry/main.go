// Command laundry runs the shop back office: the API server, queue workers,
// database chores, and the dashboard client views.
//
//	laundry serve               # HTTP API (+ gRPC health when GRPC_PORT is set)
//	laundry migrate             # create Mongo indexes
//	laundry seed                # price list and admin account
//	laundry queue:work          # audit job workers
//	laundry pricing:watch       # live price board against API_BASE_URL
//	laundry review --page 2     # archived review table
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/laundry/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "laundry",
	Short:         "Laundry shop back office",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)

	// Dashboard
	rootCmd.AddCommand(pricingWatchCmd)
	rootCmd.AddCommand(pricingUpdateCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(gcashUploadCmd)
}
