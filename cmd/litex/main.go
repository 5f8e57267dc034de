package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vilterp/litex/pkg"
	"github.com/vilterp/litex/pkg/parse"
)

var (
	configFile string
	watch      bool
	traceStore bool
	traceDef   bool
)

var rootCmd = &cobra.Command{
	Use:          "litex",
	Short:        "Check litex programs",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run <file>...",
	Short: "Run programs, each in a fresh environment",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFiles,
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Print a program in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE:  formatFile,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "rerun the file whenever it changes")
	runCmd.Flags().BoolVar(&traceStore, "trace-store", false, "report every stored fact entry")
	runCmd.Flags().BoolVar(&traceDef, "trace-def", false, "report every definition")
	rootCmd.AddCommand(runCmd, fmtCmd, configCmd)
}

func loadConfig() (*litex.Config, error) {
	if configFile == "" {
		return litex.DefaultConfig(), nil
	}
	return litex.LoadConfig(configFile)
}

func runFiles(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	config.DataFile = ""
	if config.RunRoot == "" {
		config.RunRoot = "."
	}
	config.Engine.TraceStore = config.Engine.TraceStore || traceStore
	config.Engine.TraceDef = config.Engine.TraceDef || traceDef

	engine, err := litex.NewEngine(config)
	if err != nil {
		return err
	}
	defer engine.Close()
	out := cmd.OutOrStdout()

	if watch {
		if len(args) != 1 {
			return errors.New("--watch takes exactly one file")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return engine.WatchFile(ctx, args[0], out)
	}

	failed := 0
	for _, path := range args {
		if len(args) > 1 {
			fmt.Fprintf(out, "=== %s\n", path)
		}
		ok, err := engine.RunFile(path, out)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files had errors", failed, len(args))
	}
	return nil
}

func formatFile(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "reading %s", args[0])
	}
	stmts, err := parse.ParseFile(args[0], string(src))
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		fmt.Fprintln(cmd.OutOrStdout(), stmt.String())
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
