// Package serve runs the HTTP API
package serve

import (
	"fmt"
	"os/signal"
	"syscall"

	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/internal/server"

	"github.com/spf13/cobra"
)

var port int

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the comparison HTTP API",
	Long: `Run the JSON HTTP API exposing statement comparison, categorization,
custom categories and comparison history. The server stops gracefully on
SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: server.port from the config)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := root.GetContainer(ctx)
	if err != nil {
		return err
	}
	srv, err := server.New(server.Dependencies{
		Pipeline:    c.GetPipeline(),
		Categorizer: c.GetCategorizer(),
		Custom:      c.GetCustomCategories(),
		Store:       c.GetStore(),
		History:     c.GetHistory(),
		Logger:      c.GetLogger(),
	})
	if err != nil {
		return err
	}

	listenPort := port
	if listenPort == 0 {
		listenPort = c.GetConfig().Server.Port
	}
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", listenPort))
}
