// Package serve runs the HTTP API
package serve

import (
	"github.com/spf13/cobra"

	"mepoupeze/fatura-csv/cmd/root"
	"mepoupeze/fatura-csv/internal/api"
	"mepoupeze/fatura-csv/internal/config"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the statement parsing HTTP API",
	Long:  `Expose POST /api/v1/parse and GET /health over HTTP.`,
	Run:   serveFunc,
}

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (defaults to server.address from config)")
}

func serveFunc(cmd *cobra.Command, args []string) {
	listen := addr
	if listen == "" {
		cfg, err := config.InitializeConfig()
		if err != nil {
			root.Log.Fatalf("Error loading configuration: %v", err)
		}
		listen = cfg.Server.Address
	}

	router := api.NewRouter()
	root.Log.Infof("Listening on %s", listen)
	if err := router.Run(listen); err != nil {
		root.Log.Fatalf("HTTP server failed: %v", err)
	}
}
