package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/entanglab/qnet/command"
	"github.com/entanglab/qnet/release"
)

func main() {
	root := rootCommand()

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "qnet",
		Short:   "qnet quantum network simulator",
		Long:    "qnet simulates networks of hosts exchanging qubits and entanglement over a pluggable math backend",
		Version: release.QNetDotVersion,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(command.Run())

	return cmd
}
