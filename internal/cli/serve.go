package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dennisonbertram/lgrep/internal/daemon"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/dennisonbertram/lgrep/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd is the body of the detached daemon process: it is never run
// interactively, only by daemon.Spawn re-executing the current binary
// (see daemon.go's runDaemonStart). It wins the per-index Singleton,
// writes its pid file, and hosts the Query Server until it is signalled
// to stop.
var serveCmd = &cobra.Command{
	Use:    "serve",
	Short:  "Run the query-server daemon in the foreground (internal; used by 'daemon start')",
	Args:   cobra.NoArgs,
	Hidden: true,
	RunE:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lay, err := openLayout()
	if err != nil {
		return err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return err
	}

	s, e, err := openEngineReadOnly(lay, name, true)
	if err != nil {
		return err
	}
	defer e.Close()
	defer s.Close()

	meta, err := s.Metadata()
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "read index metadata", err)
	}

	srv := server.New(e, name, lay.SocketPath(name))
	return daemon.RunForeground(ctx, name, meta.RootPath, lay.SocketPath(name), lay.PIDPath(name), srv.Serve)
}
