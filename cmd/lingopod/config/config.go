// Package configcmder provides the config command for managing persistent
// lingopod configuration stored in the .lingopod/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent lingopod configuration.

Configuration is stored as config.toml in the .lingopod/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values, and LINGOPOD_* environment variables sit between
the two.

Keys use dotted notation matching the TOML section structure:
  server.listen, client.target,
  llm.base_url, llm.default_model, llm.system_prompt,
  constraint.word_min, constraint.word_max, constraint.retries,
  translate.target_language, grammar.model, dictionary.model,
  speech.whisper_binary, speech.piper_binary, speech.use_mock,
  audio.dir, audit.driver, audit.sqlite_path, audit.postgres_url

Use subcommands to get, set, or list configuration values:
  lingopod config set <key> <value>    Set a configuration value
  lingopod config get <key>            Get a configuration value
  lingopod config list                 List all configuration values

Examples:
  lingopod config set llm.base_url http://localhost:8080/v1
  lingopod config set translate.target_language ja
  lingopod config get constraint.retries
  lingopod config list`

const configShortDesc string = "Manage persistent lingopod configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
