// Package cli implements the activityctl command tree.
package cli

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mergington/activities/internal/client"
	"github.com/mergington/activities/internal/platform/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "activityctl",
	Short:         "Manage Mergington High School activity signups from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		config.Exitf("Error: %v", err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.activityctl.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8000", "activities server URL")
	rootCmd.PersistentFlags().String("email", "", "student email used for signup and unregister")
	rootCmd.PersistentFlags().String("staff-token", "", "staff session token for unregistering other students")
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("email", rootCmd.PersistentFlags().Lookup("email"))
	_ = viper.BindPFlag("staffToken", rootCmd.PersistentFlags().Lookup("staff-token"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			config.Exitf("find home directory: %v", err)
		}

		// Search config in home directory with name ".activityctl" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".activityctl")
	}

	viper.SetEnvPrefix("ACTIVITYCTL")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

func apiClient() (client.Client, error) {
	var opts []client.Option
	if token := viper.GetString("staffToken"); token != "" {
		opts = append(opts, client.WithStaffToken(token))
	}
	return client.New(viper.GetString("server"), opts...)
}

func resolveEmail() (string, error) {
	email := viper.GetString("email")
	if email == "" {
		return "", fmt.Errorf("a student email is required: pass --email or set email in %s", configHint())
	}
	return email, nil
}

func configHint() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "~/.activityctl.yaml"
}
