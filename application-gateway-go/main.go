package main

import (
	"os"

	"github.com/MedVaultTech/RecordNetwork/application-gateway-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
