package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/cookieschat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change cookieschat settings.

Settings live in ~/.cookieschat/config.json. Environment variables such as
GEMINI_API_KEY and COOKIESCHAT_MODEL take precedence over the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := deps.LoadConfig()
		if err != nil {
			return err
		}
		return showConfig(cfg)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: fmt.Sprintf(`Change a single setting and save the config file.

Available keys: %s`, strings.Join(config.SettableKeys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setConfig(args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(deps.Stdout, path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
}

// showConfig prints cfg as JSON with the API key masked
func showConfig(cfg config.Config) error {
	cfg.APIKey = config.MaskAPIKey(config.ResolveAPIKey(cfg))
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(data))
	return nil
}

// setConfig updates key in the config file. Environment overrides are not
// written back.
func setConfig(key, value string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFileConfig(path)
	if err != nil {
		return err
	}
	if err := config.Set(&cfg, key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	shown := value
	if key == "api_key" {
		shown = config.MaskAPIKey(value)
	}
	fmt.Fprintf(deps.Stdout, "%s = %s\n", key, shown)
	return nil
}
