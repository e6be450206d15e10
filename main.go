package main

import (
	"github.com/zkid-labs/sigma-proofs/cmd"
	_ "github.com/zkid-labs/sigma-proofs/cmd/prove"
	_ "github.com/zkid-labs/sigma-proofs/cmd/verify"
)

func main() {
	cmd.Execute()
}
