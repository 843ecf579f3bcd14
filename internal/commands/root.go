// Package commands provides CLI commands for cookieschat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	modelFlag   string
	backendFlag string
	outputFlag  string
	fileFlag    string
	rawFlag     bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cookieschat [prompt]",
	Short: "Chat with Gemini about cookies",
	Long: `cookieschat keeps a conversation with Google Gemini and shows the
replies with their light markup (bold text and list items).

The API key is read from GEMINI_API_KEY or from the config file.

Examples:
  cookieschat chat                      Start interactive chat
  cookieschat serve                     Serve the chat over HTTP
  cookieschat config show               Show settings
  cookieschat "¿Qué galletas tienen?"   Send a single query
  cookieschat -f prompt.md              Read prompt from file
  cat prompt.md | cookieschat           Read prompt from stdin
  cookieschat "Hola" -o reply.md        Save reply to file`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Check for version flag
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(deps.Stdout, "cookieschat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		// Check for file input
		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(cmd.Context(), string(data), rawFlag)
		}

		// Check for stdin
		if deps.StdinPiped() {
			data, err := io.ReadAll(deps.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(cmd.Context(), string(data), rawFlag)
		}

		// Check for positional argument
		if len(args) > 0 {
			return runQuery(cmd.Context(), args[0], rawFlag)
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., gemini-2.5-flash)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Generation backend (rest, sdk)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save reply to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the reply markup without decoration")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
