package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

const (
	DefaultSocketPath = "/var/run/awareness-food.sock"
)

// Simple message types to avoid module dependencies
type CLIMessage struct {
	Command   string            `json:"command"`
	Args      []string          `json:"args,omitempty"`
	Flags     map[string]string `json:"flags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type CLIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

var socketPath string

var rootCmd = &cobra.Command{
	Use:   "awareness-food",
	Short: "AwarenessFood CLI - Control your AwarenessFood instance",
	Long: `AwarenessFood CLI provides command-line access to the running AwarenessFood service.
You can check connectivity, fetch a new recipe, and read some food trivia.`,
	SilenceUsage: true,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service status",
	Long:  "Display network state, active networks, the current recipe and uptime",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommandAndDisplay(cmd.OutOrStdout(), "status", nil)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch a new random recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommandAndDisplay(cmd.OutOrStdout(), "refresh", nil)
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Take the retry action of the current notice",
	Long:  "Dismiss the notice on screen and fetch a new random recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommandAndDisplay(cmd.OutOrStdout(), "retry", nil)
	},
}

var triviaCmd = &cobra.Command{
	Use:   "trivia",
	Short: "Show a random food trivia",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommandAndDisplay(cmd.OutOrStdout(), "trivia", nil)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display AwarenessFood version and build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendCommandAndDisplay(cmd.OutOrStdout(), "version", nil)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", DefaultSocketPath, "Path to the service control socket")
	rootCmd.AddCommand(statusCmd, refreshCmd, retryCmd, triviaCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func sendCommandAndDisplay(out io.Writer, command string, args []string) error {
	msg := CLIMessage{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	}

	response, err := sendCommand(socketPath, msg)
	if err != nil {
		return fmt.Errorf("failed to communicate with AwarenessFood service: %w\nMake sure the AwarenessFood service is running", err)
	}

	if !response.Success {
		return fmt.Errorf("command failed: %s", response.Error)
	}

	displayResponse(out, response)
	return nil
}

func sendCommand(path string, msg CLIMessage) (*CLIResponse, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AwarenessFood service: %w", err)
	}
	defer conn.Close()

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	if _, err := conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return nil, fmt.Errorf("no response from service")
	}

	var response CLIResponse
	if err := json.Unmarshal(scanner.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &response, nil
}

func displayResponse(out io.Writer, response *CLIResponse) {
	if response.Message != "" {
		fmt.Fprintln(out, response.Message)
	}
	if m, ok := response.Data.(map[string]interface{}); ok {
		displayMap(out, m, "")
	}
}

func displayMap(out io.Writer, m map[string]interface{}, prefix string) {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch v := m[key].(type) {
		case map[string]interface{}:
			fmt.Fprintf(out, "%s%s:\n", prefix, key)
			displayMap(out, v, prefix+"  ")
		default:
			fmt.Fprintf(out, "%s%s: %v\n", prefix, key, v)
		}
	}
}
