/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/dcode-ide/apiserver/client"
	"github.com/dcode-ide/apiserver/config"
	"github.com/spf13/cobra"
)

var healthTimeout time.Duration

// healthCmd probes a running server.
var healthCmd = &cobra.Command{
	Use:   "health [url]",
	Short: "Check that a dcode server is up",
	Long: `Calls / and /health on a running server and prints the results.
The url defaults to the local server on SERVER_PORT.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := fmt.Sprintf("http://localhost:%d", config.LoadConfig().ServerPort)
		if len(args) == 1 {
			target = args[0]
		}

		c := client.New(target, client.WithTimeout(healthTimeout))
		banner, err := c.Banner(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s unreachable: %w", c.BaseURL(), err)
		}
		health, err := c.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("%s health check failed: %w", c.BaseURL(), err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (version %s)\n", banner.Message, banner.Version)
		fmt.Fprintf(out, "status: %s, uptime: %s\n", health.Status,
			(time.Duration(health.Uptime * float64(time.Second))).Truncate(time.Second))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 5*time.Second, "request timeout")
}
