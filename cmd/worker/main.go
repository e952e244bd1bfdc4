// Package main is the chronodl worker process entry point: it binds an RPC
// listener exposing the worker service (internal/cluster/worker) and runs
// until its stdin is closed, per spec.md §6's worker CLI contract.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	clusterworker "chronodl/internal/cluster/worker"
	"chronodl/internal/logging"
	"chronodl/pkg/reasoner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "worker worker_id port",
	Short: "Run a chronodl distributed reasoning worker",
	Args:  cobra.ExactArgs(2),
	RunE:  runWorker,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runWorker(cmd *cobra.Command, args []string) error {
	workerID := args[0]
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", args[1], err)
	}

	logger := logging.New("worker", verbose)

	srv, err := clusterworker.Serve(workerID, port, reasoner.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to bind worker %s on port %d: %w", workerID, port, err)
	}
	defer srv.Close()

	logger.Info("worker ready", zap.String("worker_id", workerID), zap.String("addr", srv.Addr()))

	// Run until stdin closes, then release resources: the master process
	// (or an operator) signals shutdown by closing the worker's stdin pipe.
	reader := bufio.NewReader(os.Stdin)
	for {
		_, err := reader.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
	}

	logger.Info("worker shutting down", zap.String("worker_id", workerID))
	return nil
}
