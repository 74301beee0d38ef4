package initiator

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	"github.com/quorumkit/threshold-dkg/pkgs/load"
)

func init() {
	flags.PrivateKeyFlag(GenerateInitiatorKeysCmd)
}

// GenerateInitiatorKeysCmd writes a fresh envelope key seed to disk.
var GenerateInitiatorKeysCmd = &cobra.Command{
	Use:   "generate-initiator-keys",
	Short: "Generates an initiator signing key",
	RunE: func(cmd *cobra.Command, args []string) error {
		privKeyPath, err := flags.GetPrivateKeyFlagValue(cmd)
		if err != nil {
			return err
		}
		signer, err := load.GenerateSignerFile(privKeyPath)
		if err != nil {
			return err
		}
		fmt.Printf("initiator key written to %s\n", privKeyPath)
		fmt.Printf("public key: %s\n", hex.EncodeToString(signer.PublicKey()))
		return nil
	},
}
