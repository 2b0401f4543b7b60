package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/mvarnah/wingman/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wingman",
	Short: "Posts your guild's raid clears to Discord.",
	Long: `wingman reconciles gw2raidar encounter listings with locally parsed
arcdps logs and posts a per-day clear report to a Discord webhook.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wingman.json)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".wingman")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.wingman.json"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("raidar.api_url", "https://www.gw2raidar.com")
	viper.SetDefault("raidar.token", "")
	viper.SetDefault("discord.webhook_url", "")
	viper.SetDefault("store.root", "")
	viper.SetDefault("report.debug_dir", "")
	viper.SetDefault("report.state_file", "")
	viper.SetDefault("report.title_prefix", "Weekly clears!")
	viper.SetDefault("report.thumbnail_url", "")
	viper.SetDefault("report.tag_filter", "")
	viper.SetDefault("accounts", map[string]string{})
	viper.SetDefault("emojis", map[string]string{})
	viper.SetDefault("history.db_path", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
