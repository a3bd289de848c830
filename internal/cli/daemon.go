package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dennisonbertram/lgrep/internal/daemon"
	"github.com/dennisonbertram/lgrep/internal/lgerr"
	"github.com/spf13/cobra"
)

// daemonCmd groups the long-lived query-server lifecycle commands:
// absent -> running on start, running -> stopped on signal or parent
// exit, with stale pid files cleaned lazily by status/list.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the per-index query-server daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the query-server daemon for an index",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report one index's daemon status",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonListCmd = &cobra.Command{
	Use:   "list",
	Short: "Report daemon status for every known index",
	Args:  cobra.NoArgs,
	RunE:  runDaemonList,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonListCmd)
}

// runDaemonStart resolves the index, then re-execs the current binary as
// `lgrep serve --index <name>` detached (daemon.Spawn), waiting for its
// socket to become dialable. The detached process's own invocation of
// `serve` is what calls daemon.RunForeground/Singleton.Acquire (see
// serve.go); two racing `daemon start` calls for the same index both
// spawn, but only one wins the Singleton, and this caller only waits for
// the socket, so the race resolves without this command needing a lock of
// its own.
func runDaemonStart(cmd *cobra.Command, args []string) error {
	lay, err := openLayout()
	if err != nil {
		return err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return err
	}
	if _, err := openStore(lay, name); err != nil {
		return err
	}

	socketPath := lay.SocketPath(name)
	exe, err := os.Executable()
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "resolve executable path", err)
	}
	if err := daemon.Spawn([]string{exe, "serve", "--index", name}, socketPath, 10*time.Second); err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "start daemon", err)
	}
	fmt.Printf("daemon for %q is running (socket %s)\n", name, socketPath)
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	lay, err := openLayout()
	if err != nil {
		return err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return err
	}
	if err := daemon.Stop(lay.PIDPath(name), 10*time.Second); err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "stop daemon", err)
	}
	fmt.Printf("daemon for %q stopped\n", name)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	lay, err := openLayout()
	if err != nil {
		return err
	}
	name, err := resolveIndexName(lay)
	if err != nil {
		return err
	}
	info, err := daemon.Query(lay.PIDPath(name))
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "query daemon status", err)
	}
	info.Index = name
	return printJSON(info)
}

func runDaemonList(cmd *cobra.Command, args []string) error {
	lay, err := openLayout()
	if err != nil {
		return err
	}
	infos, err := daemon.List(lay)
	if err != nil {
		return lgerr.Wrap(lgerr.StoreError, "cli", "list daemons", err)
	}
	return printJSON(infos)
}
