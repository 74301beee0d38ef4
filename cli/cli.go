package cli

import (
	"log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/initiator"
	"github.com/quorumkit/threshold-dkg/cli/keygen"
	"github.com/quorumkit/threshold-dkg/cli/operator"
	"github.com/quorumkit/threshold-dkg/cli/verify"
)

func init() {
	RootCmd.AddCommand(initiator.StartCeremony)
	RootCmd.AddCommand(initiator.HealthCheck)
	RootCmd.AddCommand(initiator.GenerateInitiatorKeysCmd)
	RootCmd.AddCommand(operator.StartNode)
	RootCmd.AddCommand(operator.GenerateOperatorKeysCmd)
	RootCmd.AddCommand(keygen.GenerateKeySetCmd)
	RootCmd.AddCommand(keygen.LocalCeremonyCmd)
	RootCmd.AddCommand(verify.Verify)
}

// RootCmd represents the root command of the threshold-dkg CLI
var RootCmd = &cobra.Command{
	Use:   "threshold-dkg",
	Short: "CLI for running dealer-less threshold key generation",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
	},
}

// Execute executes the root command
func Execute(appName, version string) {
	RootCmd.Short = appName
	RootCmd.Version = version

	if err := RootCmd.Execute(); err != nil {
		log.Fatal("failed to execute root command", zap.Error(err))
	}
}
