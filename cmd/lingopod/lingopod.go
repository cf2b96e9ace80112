// Package lingopodcmder
package lingopodcmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/lingopod/lingopod/cmd/lingopod/chat"
	configcmder "github.com/lingopod/lingopod/cmd/lingopod/config"
	servecmder "github.com/lingopod/lingopod/cmd/lingopod/serve"
	versioncmder "github.com/lingopod/lingopod/cmd/version"
)

const lingopodLongDesc string = `Lingopod is a language practice backend for local LLMs.

Run services using:
  lingopod serve       Run the API server
  lingopod chat        Practice conversation against a running server
  lingopod config      Manage persistent configuration`

const lingopodShortDesc string = "Lingopod - language practice over local models"

func NewLingopodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lingopod",
		Short: lingopodShortDesc,
		Long:  lingopodLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .lingopod/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
