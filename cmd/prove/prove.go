package prove

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zkid-labs/sigma-proofs/cmd"
	"github.com/zkid-labs/sigma-proofs/engine"
)

var statementFile string
var outFile string

// statementInput is the on-disk statement shape. Unlike engine.Statement it
// carries the private inputs, which exist only in this local file and never
// reach the proof record.
type statementInput struct {
	Type          engine.StatementType `json:"type"`
	Description   string               `json:"description,omitempty"`
	PublicInputs  map[string]string    `json:"publicInputs,omitempty"`
	PrivateInputs map[string]string    `json:"privateInputs,omitempty"`
	Relation      string               `json:"relation,omitempty"`
}

// proveCmd represents the prove command
var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "Generate a proof for a statement file",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runProve()
	},
}

func init() {
	cmd.RootCmd.AddCommand(proveCmd)

	proveCmd.Flags().StringVar(&statementFile, "statement", "", "path of the statement JSON file")
	proveCmd.Flags().StringVar(&outFile, "out", "proof.json", "path to write the proof JSON to")
	proveCmd.MarkFlagRequired("statement")
}

func runProve() error {
	raw, err := os.ReadFile(statementFile)
	if err != nil {
		return err
	}
	var in statementInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("parsing statement file: %w", err)
	}

	cfg := engine.DefaultConfig()
	cfg.Curve = cmd.CurveName
	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	proof, err := eng.GenerateProof(engine.Statement{
		Type:          in.Type,
		Description:   in.Description,
		PublicInputs:  in.PublicInputs,
		PrivateInputs: in.PrivateInputs,
		Relation:      in.Relation,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(proof, "", " ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outFile, out, 0644); err != nil {
		return err
	}
	fmt.Printf("proof %s written to %s\n", proof.ID, outFile)
	return nil
}
