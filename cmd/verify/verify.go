package verify

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkid-labs/sigma-proofs/cmd"
	"github.com/zkid-labs/sigma-proofs/engine"
)

var proofFile string

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a proof file",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runVerify()
	},
}

func init() {
	cmd.RootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&proofFile, "proof", "", "path of the proof JSON file")
	verifyCmd.MarkFlagRequired("proof")
}

func runVerify() error {
	raw, err := os.ReadFile(proofFile)
	if err != nil {
		return err
	}
	var proof engine.Proof
	if err := json.Unmarshal(raw, &proof); err != nil {
		return fmt.Errorf("parsing proof file: %w", err)
	}

	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		return err
	}
	result := eng.VerifyProof(&proof)
	out, err := json.MarshalIndent(result, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if !result.IsValid {
		os.Exit(1)
	}
	return nil
}
