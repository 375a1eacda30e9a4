package main

import (
	"os"

	"github.com/spf13/cobra"

	"hardhat/internal/interfaces/cli/migrate"
	"hardhat/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hardhat",
		Short: "Hardhat - plan entitlement and usage metering service",
		Long:  `Hardhat serves plan entitlements, usage metering, and plan lifecycle for the contractor platform.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
