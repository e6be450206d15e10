package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sigma-proofs",
	Short: "CLI for issuing and checking discrete-log zero-knowledge proofs",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var CurveName string

func init() {
	RootCmd.PersistentFlags().StringVar(&CurveName, "curve", "secp256k1", "Curve to prove over")

	RootCmd.CompletionOptions.DisableDefaultCmd = true
}
