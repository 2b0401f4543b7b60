package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvarnah/wingman/internal/utils"
)

// mappingCmd manages the account-to-Discord identity map used for the
// roster field. Accounts with no mapping still show up in reports, just
// emphasized instead of mentioned.
var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage the account-to-Discord identity map",
}

var mappingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured account mappings",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := viper.GetStringMapString("accounts")
		if len(accounts) == 0 {
			fmt.Println("No account mappings configured.")
			return nil
		}

		keys := make([]string, 0, len(accounts))
		for k := range accounts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ACCOUNT\tDISCORD\t")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%s\t\n", k, accounts[k])
		}
		return w.Flush()
	},
}

var mappingSetCmd = &cobra.Command{
	Use:   "set <account> <discord-identity>",
	Short: "Add or update one account mapping",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := viper.GetStringMapString("accounts")
		if accounts == nil {
			accounts = map[string]string{}
		}
		accounts[args[0]] = args[1]
		viper.Set("accounts", accounts)
		if err := viper.WriteConfig(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		utils.Log.Infof("Mapped %s to %s", args[0], args[1])
		return nil
	},
}

var mappingRmCmd = &cobra.Command{
	Use:   "rm <account>",
	Short: "Remove one account mapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := viper.GetStringMapString("accounts")
		if _, ok := accounts[args[0]]; !ok {
			return fmt.Errorf("no mapping for account %s", args[0])
		}
		delete(accounts, args[0])
		viper.Set("accounts", accounts)
		if err := viper.WriteConfig(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		utils.Log.Infof("Removed mapping for %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mappingCmd)
	mappingCmd.AddCommand(mappingListCmd)
	mappingCmd.AddCommand(mappingSetCmd)
	mappingCmd.AddCommand(mappingRmCmd)
}
