package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/compassx/internal/adapters/driven/simulated"
	"github.com/custodia-labs/compassx/internal/adapters/driving/mcp"
	"github.com/custodia-labs/compassx/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes the current_heading, declination and capabilities tools
over the simulated device, which keeps turning while the server runs.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default)
  compassx mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  compassx mcp serve --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.compass.Detach()

	ports := &mcp.Ports{
		Compass:  rt.compass,
		Settings: settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	motion := simulated.NewMotion(rt.device, simulated.MotionConfig{
		TurnRate:            watchMotion.TurnRate,
		Wobble:              watchMotion.Wobble,
		HeadingErrorDegrees: watchMotion.HeadingErrorDegrees,
		Period:              rt.settings.Sensor.SamplingRate.Period(),
		Location:            devFlags.fix(),
	})
	go func() {
		if err := motion.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
			logger.Warn("motion stopped: %v", err)
		}
	}()

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
