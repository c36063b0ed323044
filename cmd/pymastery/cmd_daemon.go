package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pymastery/internal/config"
)

const (
	daemonBinary = "pymasteryd"
	pidFile      = "pymasteryd.pid"
)

var healthClient = &http.Client{Timeout: 2 * time.Second}

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the PyMastery daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			base := daemonURL(cfg)

			if isRunning(base) {
				fmt.Fprintln(out, "✓ Daemon is already running")
				return nil
			}

			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path, err := findDaemonBinary()
			if err != nil {
				return fmt.Errorf("find daemon binary: %w", err)
			}

			proc := exec.Command(path)
			proc.Dir = dir
			configureDaemonProcess(proc)
			if err := proc.Start(); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}

			fmt.Fprint(out, "Starting daemon...")
			for i := 0; i < 30; i++ {
				time.Sleep(100 * time.Millisecond)
				if isRunning(base) {
					fmt.Fprintln(out, " ✓")
					fmt.Fprintf(out, "Daemon running at %s\n", base)
					return nil
				}
				fmt.Fprint(out, ".")
			}

			fmt.Fprintln(out, " ✗")
			return fmt.Errorf("daemon failed to start (check logs with 'pymastery logs')")
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the PyMastery daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			base := daemonURL(cfg)

			if !isRunning(base) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}

			dir, err := config.Dir()
			if err != nil {
				return err
			}
			pid, err := readPID(filepath.Join(dir, pidFile))
			if err != nil {
				return err
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("find process: %w", err)
			}

			fmt.Fprint(out, "Stopping daemon...")
			if err := process.Signal(syscall.SIGTERM); err != nil {
				return fmt.Errorf("send signal: %w", err)
			}

			for i := 0; i < 50; i++ {
				time.Sleep(100 * time.Millisecond)
				if !isRunning(base) {
					fmt.Fprintln(out, " ✓")
					return nil
				}
				fmt.Fprint(out, ".")
			}

			fmt.Fprintln(out, " ✗")
			return fmt.Errorf("daemon did not stop gracefully")
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			base := daemonURL(cfg)

			if !isRunning(base) {
				fmt.Fprintln(out, "Status: stopped")
				return nil
			}

			resp, err := healthClient.Get(base + "/v1/status")
			if err != nil {
				return fmt.Errorf("get status: %w", err)
			}
			defer resp.Body.Close()

			var status struct {
				Status  string `json:"status"`
				Version string `json:"version"`
				Uptime  int    `json:"uptime_seconds"`
				Locale  string `json:"locale"`
				Storage string `json:"storage"`
				Catalog struct {
					LessonCount int `json:"lesson_count"`
				} `json:"catalog"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("parse status: %w", err)
			}

			fmt.Fprintf(out, "Status:  %s\n", status.Status)
			fmt.Fprintf(out, "Version: %s\n", status.Version)
			fmt.Fprintf(out, "Uptime:  %s\n", time.Duration(status.Uptime)*time.Second)
			fmt.Fprintf(out, "Locale:  %s\n", status.Locale)
			fmt.Fprintf(out, "Storage: %s\n", status.Storage)
			fmt.Fprintf(out, "Lessons: %d\n", status.Catalog.LessonCount)
			fmt.Fprintf(out, "Address: %s\n", base)
			return nil
		},
	}
}

func newLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			logPath := filepath.Join(dir, "logs", "pymasteryd.log")
			file, err := os.Open(logPath)
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "No log file found. Start the daemon first.")
				return nil
			}
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer file.Close()

			// Only the last ~4KB
			info, err := file.Stat()
			if err != nil {
				return fmt.Errorf("stat log file: %w", err)
			}
			offset := info.Size() - 4096
			if offset < 0 {
				offset = 0
			}
			if _, err := file.Seek(offset, 0); err != nil {
				return fmt.Errorf("seek log file: %w", err)
			}

			scanner := bufio.NewScanner(file)
			if offset > 0 {
				scanner.Scan() // partial line
			}
			for scanner.Scan() {
				fmt.Fprintln(out, scanner.Text())
			}
			return scanner.Err()
		},
	}
}

func daemonURL(cfg *config.LocalConfig) string {
	return "http://" + cfg.Address()
}

// isRunning checks if the daemon is running by calling the health endpoint
func isRunning(base string) bool {
	resp, err := healthClient.Get(base + "/v1/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse PID: %w", err)
	}
	return pid, nil
}

// findDaemonBinary locates the pymasteryd binary
func findDaemonBinary() (string, error) {
	if path, err := exec.LookPath(daemonBinary); err == nil {
		return path, nil
	}

	if self, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(self), daemonBinary)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	locations := []string{
		"/usr/local/bin/" + daemonBinary,
		"./" + daemonBinary,
	}
	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%s binary not found (build with 'go build ./cmd/pymasteryd')", daemonBinary)
}
