package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OpenTollGate/awareness-food/src/recipes"
	"github.com/OpenTollGate/awareness-food/src/screen"
	"github.com/sirupsen/logrus"
)

const (
	SocketPermissions = 0666

	// commandTimeout bounds refresh and trivia requests issued over the socket.
	commandTimeout = 70 * time.Second
)

var cliLogger = logrus.WithField("module", "cli")

// ScreenController is the part of the screen the CLI drives.
type ScreenController interface {
	Snapshot() screen.Snapshot
	Refresh(ctx context.Context) recipes.RecipeAPIState
	Retry(ctx context.Context) recipes.RecipeAPIState
	ShowTrivia(ctx context.Context) recipes.TriviaAPIState
}

// CLIServer handles Unix socket communication for CLI commands
type CLIServer struct {
	socketPath    string
	screen        ScreenController
	analyticsFeed string
	startTime     time.Time
	listener      net.Listener
	running       atomic.Bool
	conns         sync.WaitGroup
}

// NewCLIServer creates a new CLI server instance. analyticsFeed is the npub
// analytics notes are published under, empty when disabled.
func NewCLIServer(socketPath string, screen ScreenController, analyticsFeed string) *CLIServer {
	return &CLIServer{
		socketPath:    socketPath,
		screen:        screen,
		analyticsFeed: analyticsFeed,
		startTime:     time.Now(),
	}
}

// Start begins listening on the Unix socket
func (s *CLIServer) Start() error {
	// Remove existing socket file if it exists
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create Unix socket: %w", err)
	}

	// Set socket permissions so CLI can access it
	if err := os.Chmod(s.socketPath, SocketPermissions); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running.Store(true)

	cliLogger.WithField("socket_path", s.socketPath).Info("CLI server started")

	s.conns.Add(1)
	go s.acceptConnections()

	return nil
}

// Stop shuts down the CLI server and waits for in-flight connections
func (s *CLIServer) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()

	os.Remove(s.socketPath)

	cliLogger.Info("CLI server stopped")
	return nil
}

// acceptConnections handles incoming connections
func (s *CLIServer) acceptConnections() {
	defer s.conns.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || !s.running.Load() {
				return
			}
			cliLogger.WithError(err).Error("Failed to accept connection")
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection processes a single CLI connection
func (s *CLIServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReaderSize(conn, 8192)

	// Read until newline (our protocol sends data + \n)
	data, err := reader.ReadBytes('\n')
	if err != nil {
		cliLogger.WithError(err).Error("Failed to read from connection")
		return
	}
	if len(data) > 0 && data[len(data)-1] == '\n' {
		data = data[:len(data)-1]
	}

	cliLogger.WithField("data_length", len(data)).Debug("Received CLI message")

	var msg CLIMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		cliLogger.WithError(err).Error("Failed to unmarshal CLI message")
		s.sendError(conn, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	response := s.processCommand(msg)
	s.sendResponse(conn, response)
}

// processCommand executes the CLI command and returns a response
func (s *CLIServer) processCommand(msg CLIMessage) CLIResponse {
	cliLogger.WithFields(logrus.Fields{
		"command": msg.Command,
		"args":    msg.Args,
	}).Debug("Processing CLI command")

	switch msg.Command {
	case "status":
		return s.handleStatusCommand()
	case "refresh":
		return s.handleRefreshCommand(s.screen.Refresh)
	case "retry":
		return s.handleRefreshCommand(s.screen.Retry)
	case "trivia":
		return s.handleTriviaCommand()
	case "version":
		return s.handleVersionCommand()
	default:
		return errorResponse(fmt.Sprintf("Unknown command: %s", msg.Command))
	}
}

// handleStatusCommand returns service status
func (s *CLIServer) handleStatusCommand() CLIResponse {
	snapshot := s.screen.Snapshot()

	status := ServiceStatus{
		Running:        true,
		Version:        GetVersionInfo(),
		Uptime:         time.Since(s.startTime).Round(time.Second).String(),
		Network:        snapshot.Network,
		ActiveNetworks: snapshot.ActiveNetworks,
		Loading:        snapshot.Loading,
		RecipeTitle:    snapshot.RecipeTitle,
		Notice:         snapshot.Notice,
		AnalyticsFeed:  s.analyticsFeed,
	}

	return CLIResponse{
		Success:   true,
		Message:   "Service status retrieved",
		Data:      status,
		Timestamp: time.Now(),
	}
}

// handleRefreshCommand fetches a new random recipe through fetch, either a
// plain refresh or the notice's retry action
func (s *CLIServer) handleRefreshCommand(fetch func(context.Context) recipes.RecipeAPIState) CLIResponse {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	state := fetch(ctx)
	if !state.IsResult() {
		return errorResponse("Failed to fetch a recipe")
	}

	return CLIResponse{
		Success: true,
		Message: fmt.Sprintf("Now showing: %s", state.Recipe.Title),
		Data: RecipeInfo{
			ID:    state.Recipe.ID,
			Title: state.Recipe.Title,
			Image: state.Recipe.Image,
		},
		Timestamp: time.Now(),
	}
}

// handleTriviaCommand fetches one food trivia text
func (s *CLIServer) handleTriviaCommand() CLIResponse {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	state := s.screen.ShowTrivia(ctx)
	if !state.IsResult() {
		return errorResponse("Failed to fetch food trivia")
	}

	return CLIResponse{
		Success:   true,
		Message:   state.Text,
		Timestamp: time.Now(),
	}
}

// handleVersionCommand returns version information
func (s *CLIServer) handleVersionCommand() CLIResponse {
	return CLIResponse{
		Success:   true,
		Message:   GetFormattedVersionInfo(),
		Data:      GetFullVersionInfo(),
		Timestamp: time.Now(),
	}
}

func errorResponse(msg string) CLIResponse {
	return CLIResponse{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now(),
	}
}

// sendResponse sends a CLIResponse back to the client
func (s *CLIServer) sendResponse(conn net.Conn, response CLIResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		cliLogger.WithError(err).Error("Failed to marshal response")
		return
	}

	conn.Write(append(data, '\n'))
}

// sendError sends an error response to the client
func (s *CLIServer) sendError(conn net.Conn, errorMsg string) {
	s.sendResponse(conn, errorResponse(errorMsg))
}
