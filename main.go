package main

import (
	"fmt"
	"os"

	"fjacquet/statement-compare/cmd/categories"
	"fjacquet/statement-compare/cmd/categorize"
	"fjacquet/statement-compare/cmd/compare"
	"fjacquet/statement-compare/cmd/convert"
	"fjacquet/statement-compare/cmd/history"
	"fjacquet/statement-compare/cmd/root"
	"fjacquet/statement-compare/cmd/serve"
	"fjacquet/statement-compare/internal/logging"
)

func init() {
	// The bootstrap logger only covers output before the config is loaded;
	// PersistentPreRunE replaces it with one built from the config.
	root.Log = logging.NewLogrusAdapter(envOr("LOG_LEVEL", "info"), envOr("LOG_FORMAT", "text"))

	root.Init()

	root.Cmd.AddCommand(compare.Cmd)
	root.Cmd.AddCommand(convert.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(categories.Cmd)
	root.Cmd.AddCommand(history.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
