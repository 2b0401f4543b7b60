package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvarnah/wingman/internal/utils"
	"github.com/mvarnah/wingman/pkg/raidar"
)

// tokenCmd exchanges gw2raidar credentials for an API token and stores
// it in the config file.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Fetch a gw2raidar API token and save it to the config",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Print("gw2raidar username: ")
		username, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		fmt.Print("gw2raidar password: ")
		password, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		client := &raidar.Client{APIURL: viper.GetString("raidar.api_url")}
		token, err := client.RequestToken(cmd.Context(), strings.TrimSpace(username), strings.TrimSpace(password))
		if err != nil {
			return err
		}

		viper.Set("raidar.token", token)
		if err := viper.WriteConfig(); err != nil {
			return fmt.Errorf("saving token to config: %w", err)
		}

		utils.Log.Info("Token saved.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
