// Package server provides the MCP server implementation for the Telescope
// analytics service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/palisade-labs/telescope-mcp-server/internal/config"
	"github.com/palisade-labs/telescope-mcp-server/internal/health"
	"github.com/palisade-labs/telescope-mcp-server/internal/metrics"
	"github.com/palisade-labs/telescope-mcp-server/internal/storage"
	"github.com/palisade-labs/telescope-mcp-server/internal/tools"
	"github.com/palisade-labs/telescope-mcp-server/internal/tracing"
)

// Server represents the MCP server
type Server struct {
	mcpServer    *mcp.Server
	store        *storage.Client
	config       *config.Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	version      string
	healthServer *health.Server
}

// New creates a new MCP server instance. The storage client is created here
// and injected into every tool; no connection is attempted until a tool
// first needs one.
func New(cfg *config.Config, logger *zap.Logger, version string) (*Server, error) {
	store := storage.New(cfg, logger)

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "Telescope MCP Server",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
		config:    cfg,
		logger:    logger,
		metrics:   metrics.New(logger),
		version:   version,
	}

	if cfg.HealthPort > 0 {
		checker := health.New(store, logger)
		s.healthServer = health.NewServer(checker, logger, cfg.HealthPort, cfg.HealthBindAddr, cfg.MetricsEndpoint)
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Connectivity tools
	s.registerTool(tools.NewHelloWorldTool(s.store, s.logger))
	s.registerTool(tools.NewTelescopeStatusTool(s.store, s.logger))

	// Listing tools
	s.registerTool(tools.NewGetRecentEntriesTool(s.store, s.logger))
	s.registerTool(tools.NewRecentRequestsTool(s.store, s.logger))
	s.registerTool(tools.NewSlowQueriesTool(s.store, s.logger))
	s.registerTool(tools.NewJobsTool(s.store, s.logger))
	s.registerTool(tools.NewCacheStatsTool(s.store, s.logger))

	// Analysis tools
	s.registerTool(tools.NewPerformanceSummaryTool(s.store, s.logger))
	s.registerTool(tools.NewUserActivityTool(s.store, s.logger))

	// Exception tools
	s.registerTool(tools.NewExceptionsTool(s.store, s.logger))
	s.registerTool(tools.NewExceptionDetailTool(s.store, s.logger))
	s.registerTool(tools.NewExceptionPatternsTool(s.store, s.logger))

	s.logger.Info("Registered all MCP tools")
}

// registerTool wires one tool into the MCP server with metrics tracking and
// a tracing span around each invocation.
func (s *Server) registerTool(t tools.Tool) {
	toolName := t.Name()

	mcpTool := &mcp.Tool{
		Name:        toolName,
		Description: t.Description(),
		InputSchema: t.InputSchema(),
		Annotations: t.Annotations(),
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		ctx, span := tracing.ToolSpan(ctx, toolName)
		defer span.End()

		var args map[string]interface{}
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.metrics.RecordToolExecution(toolName, false, time.Since(start))
				tracing.RecordError(span, err)
				return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
			}
		}

		result, err := t.Execute(ctx, args)
		success := err == nil && (result == nil || !result.IsError)
		s.metrics.RecordToolExecution(toolName, success, time.Since(start))
		if success {
			tracing.SetSuccess(span)
		} else {
			tracing.RecordError(span, err)
		}

		return result, err
	}

	s.mcpServer.AddTool(mcpTool, handler)
	s.logger.Debug("Registered tool", zap.String("tool", mcpTool.Name))
}

// Start starts the MCP server over the stdio transport and blocks until the
// context is cancelled or the transport closes.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MCP server",
		zap.String("version", s.version),
		zap.String("database", s.config.Descriptor()),
	)

	if s.healthServer != nil {
		go func() {
			if err := s.healthServer.Start(); err != nil {
				s.logger.Error("Health server error", zap.Error(err))
			}
		}()
		s.healthServer.SetReady(true)
	}

	defer func() {
		s.metrics.LogStats()

		if s.healthServer != nil {
			s.healthServer.SetReady(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.healthServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("Failed to shutdown health server", zap.Error(err))
			}
		}

		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close storage client", zap.Error(err))
		}
	}()

	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// GetMetrics returns the server's metrics tracker for external access
func (s *Server) GetMetrics() *metrics.Metrics {
	return s.metrics
}
