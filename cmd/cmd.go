// Package cmd provides the carebot CLI commands.
//
// Commands:
//   - chat: interactive terminal chat with a Bubble Tea TUI (the default)
//   - ask: one-shot prompt, reply streamed to stdout
//   - serve: HTTP JSON API with SSE streaming
//
// All commands install a signal-aware context so Ctrl+C shuts the process
// down cleanly.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the carebot CLI.
func Execute() error {
	// Initialize the default logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		return runChat()
	}

	switch os.Args[1] {
	case "chat":
		return runChat()
	case "ask":
		return runAsk(os.Args[2:])
	case "serve":
		return runServe()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Carebot - Terminal client for the customer-care agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  carebot              Start interactive chat mode")
	fmt.Println("  carebot chat         Start interactive chat mode")
	fmt.Println("  carebot ask <prompt> Run one turn, stream the reply to stdout")
	fmt.Println("  carebot serve [addr] Start HTTP API server (default: 127.0.0.1:8080)")
	fmt.Println("  carebot --version    Show version information")
	fmt.Println("  carebot --help       Show this help")
	fmt.Println()
	fmt.Println("Chat commands (in interactive mode):")
	fmt.Println("  /help                Show available commands")
	fmt.Println("  /overrides           Show the session attribute record")
	fmt.Println("  /set <key> <value>   Override an attribute for this session")
	fmt.Println("  /use on|off          Toggle overrides against the baseline")
	fmt.Println("  /clear               Clear the transcript")
	fmt.Println("  /exit, /quit         Exit carebot")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  AGENT_ID             Required: Bedrock agent id")
	fmt.Println("  AGENT_ALIAS_ID       Required: Bedrock agent alias id")
	fmt.Println("  AWS_REGION           Optional: AWS region (default: eu-west-1)")
	fmt.Println("  DEBUG                Optional: enable debug logging")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/carebyte/carebot")
}
