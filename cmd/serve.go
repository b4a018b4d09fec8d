package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"invoiceqc/internal/api"
	"invoiceqc/internal/logger"
	"invoiceqc/internal/store"
	"invoiceqc/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API over HTTP",
	Long: `Start an HTTP server exposing:

  GET  /health          liveness check
  POST /validate-json   validate a JSON array of invoice records
  GET  /runs            recent validation runs (with --db)`,
	Example: `  invoiceqc serve --addr :9000 --db`,
	Args:    cobra.NoArgs,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: HTTP_ADDR)")
	serveCmd.Flags().Bool("db", false, "Record every validation in the history database (QC_DB_PATH)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := logger.WithComponent("api")

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = appConfig.HTTPAddr
	}
	withDB, _ := cmd.Flags().GetBool("db")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs api.RunStore
	if withDB {
		db, err := store.Open(ctx, appConfig.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runs = db
	}

	server := api.NewServer(validation.NewEngine(), runs, log)
	return server.ListenAndServe(ctx, addr)
}
