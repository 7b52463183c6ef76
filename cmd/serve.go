package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkellner/timeclock/internal/api"
	"github.com/tkellner/timeclock/internal/daemon"
)

var serveForeground bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the timeclock HTTP API server.

By default the server is started as a background daemon; use
--foreground to run it in the current terminal. Use 'serve stop' and
'serve status' to manage a running daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveForeground {
			return serveForegroundRun()
		}
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background API server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&serveForeground, "foreground", "f", false, "Run in the foreground instead of daemonizing")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	_ = viper.BindPFlag("http.port", serveCmd.Flags().Lookup("port"))

	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

// pidFile returns the PID file handle in the state directory.
func pidFile() daemon.Pidfile {
	return daemon.New(filepath.Join(viper.GetString("state_dir"), "timeclock-serve.pid"))
}

// serveLogPath returns where the daemonized server writes its log.
func serveLogPath() string {
	return filepath.Join(viper.GetString("state_dir"), "timeclock-serve.log")
}

// serveForegroundRun runs the API server in-process until interrupted.
func serveForegroundRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	e, err := getEngine()
	if err != nil {
		return err
	}
	svc, err := getAssignments()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", viper.GetInt("http.port"))
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(s, e, svc).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		ui.Info("Serving API at http://localhost%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveStartRun forks the server into the background and records its PID.
func serveStartRun() error {
	pf := pidFile()
	if pid, running := pf.Alive(); running {
		return fmt.Errorf("server already running (pid %d)", pid)
	}

	if dryRun {
		ui.DryRunMsg("Would start API server on port %d", viper.GetInt("http.port"))
		return nil
	}

	if err := os.MkdirAll(viper.GetString("state_dir"), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	logFile, err := os.OpenFile(serveLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	child := exec.Command(exe, "serve", "--foreground",
		"--port", fmt.Sprintf("%d", viper.GetInt("http.port")))
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	if err := pf.Write(child.Process.Pid); err != nil {
		_ = child.Process.Kill()
		return fmt.Errorf("write pid file: %w", err)
	}

	ui.Success("API server started (pid %d, port %d)", child.Process.Pid, viper.GetInt("http.port"))
	ui.Info("Log: %s", serveLogPath())
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	pid, running := pf.Alive()
	if !running {
		_ = pf.Clear()
		return fmt.Errorf("server not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop API server (pid %d)", pid)
		return nil
	}

	if err := pf.Kill(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}

	// Give it a moment to exit cleanly, then escalate.
	for i := 0; i < 20; i++ {
		if _, still := pf.Alive(); !still {
			_ = pf.Clear()
			ui.Success("API server stopped")
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	_ = pf.Kill(sigKILL())
	_ = pf.Clear()
	ui.Warning("API server killed after timeout")
	return nil
}

func serveStatusRun() error {
	pf := pidFile()
	if pid, running := pf.Alive(); running {
		ui.Success("API server running (pid %d, port %d)", pid, viper.GetInt("http.port"))
		return nil
	}
	ui.Info("API server not running")
	return nil
}
