package keygen

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aquasecurity/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	cli_utils "github.com/quorumkit/threshold-dkg/cli/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
)

func init() {
	flags.ThresholdFlag(GenerateKeySetCmd)
	flags.SharesFlag(GenerateKeySetCmd)
	flags.OutputPathFlag(GenerateKeySetCmd)
	flags.KeystorePasswordFlag(GenerateKeySetCmd)
	flags.LogLevelFlag(GenerateKeySetCmd)
	flags.LogFormatFlag(GenerateKeySetCmd)
}

// GenerateKeySetCmd derives a key set from a single locally sampled secret.
// Unlike a ceremony, the machine running it momentarily holds the full group
// key, so it is only suitable for tests and single-owner deployments.
var GenerateKeySetCmd = &cobra.Command{
	Use:   "generate-keyset",
	Short: "Generates a threshold key set from a local random secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, err := flags.GetLogLevelFlagValue(cmd)
		if err != nil {
			return err
		}
		logFormat, err := flags.GetLogFormatFlagValue(cmd)
		if err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(logLevel, logFormat, "dkg-keygen")
		if err != nil {
			return err
		}
		threshold, err := flags.GetThresholdFlagValue(cmd)
		if err != nil {
			return err
		}
		shares, err := flags.GetSharesFlagValue(cmd)
		if err != nil {
			return err
		}
		if threshold == 0 || threshold > shares {
			return errors.Errorf("threshold %d must be between 1 and the share count %d", threshold, shares)
		}
		outputPath, err := flags.GetOutputPathFlagValue(cmd)
		if err != nil {
			return err
		}
		password, err := flags.GetKeystorePasswordFlagValue(cmd)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outputPath, 0o700); err != nil {
			return errors.Wrap(err, "create output directory")
		}

		secretSet, err := crypto.GenerateRandomSecretKeySet(int(threshold))
		if err != nil {
			logger.Fatal("failed to sample key set", zap.Error(err))
		}
		publicSet := secretSet.PublicKeySet()
		identifier := utils.NewID()
		id := utils.IDString(identifier)

		for i := uint64(1); i <= shares; i++ {
			part, err := secretSet.KeyShare(i)
			if err != nil {
				logger.Fatal("failed to derive key part", zap.Error(err))
			}
			sharePath := filepath.Join(outputPath, fmt.Sprintf("share-%d-%s.json", i, id))
			if err := keystore.SaveKeyPart(sharePath, part, password); err != nil {
				logger.Fatal("failed to store key part", zap.Error(err))
			}
		}
		publicSetPath := filepath.Join(outputPath, fmt.Sprintf("publicset-%s.json", id))
		if err := keystore.SavePublicKeySet(publicSetPath, publicSet); err != nil {
			logger.Fatal("failed to store public key set", zap.Error(err))
		}

		pubBytes, err := publicSet.PublicKey().ToBytes()
		if err != nil {
			return err
		}
		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Key Set ID", "Group Public Key", "Threshold", "Shares")
		tbl.AddRow(
			id,
			hex.EncodeToString(pubBytes),
			fmt.Sprintf("%d", threshold),
			fmt.Sprintf("%d", shares),
		)
		tbl.Render()
		return nil
	},
}
