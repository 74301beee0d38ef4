package keygen

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aquasecurity/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	cli_utils "github.com/quorumkit/threshold-dkg/cli/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/node"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
)

const localCeremonyTimeout = time.Minute

func init() {
	flags.DealersFlag(LocalCeremonyCmd)
	flags.FaultyFlag(LocalCeremonyCmd)
	flags.OutputPathFlag(LocalCeremonyCmd)
	flags.KeystorePasswordFlag(LocalCeremonyCmd)
	flags.LogLevelFlag(LocalCeremonyCmd)
	flags.LogFormatFlag(LocalCeremonyCmd)
}

// LocalCeremonyCmd runs a full ceremony with all participants in-process.
// The group secret never exists in one place, but all key parts end up on
// the same disk, so this too is for tests and single-owner deployments.
var LocalCeremonyCmd = &cobra.Command{
	Use:   "local-ceremony",
	Short: "Runs a key generation ceremony with all participants in-process",
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, err := flags.GetLogLevelFlagValue(cmd)
		if err != nil {
			return err
		}
		logFormat, err := flags.GetLogFormatFlagValue(cmd)
		if err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(logLevel, logFormat, "dkg-local")
		if err != nil {
			return err
		}
		dealers, err := flags.GetDealersFlagValue(cmd)
		if err != nil {
			return err
		}
		faulty, err := flags.GetFaultyFlagValue(cmd)
		if err != nil {
			return err
		}
		params, err := dkg.NewParams(dealers, faulty)
		if err != nil {
			return err
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

		ctx, cancel := context.WithTimeout(context.Background(), localCeremonyTimeout)
		defer cancel()
		results, err := node.RunLocalCeremony(ctx, logger, params)
		if err != nil {
			logger.Fatal("ceremony failed", zap.Error(err))
		}

		identifier := utils.NewID()
		id := utils.IDString(identifier)
		publicSet := results[0].PublicKeySet
		for _, res := range results {
			sharePath := filepath.Join(outputPath, fmt.Sprintf("share-%d-%s.json", res.NodeID, id))
			if err := keystore.SaveKeyPart(sharePath, res.KeyPart, password); err != nil {
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
		tbl.SetHeaders("Ceremony ID", "Group Public Key", "Dealers", "Faulty")
		tbl.AddRow(
			id,
			hex.EncodeToString(pubBytes),
			fmt.Sprintf("%d", dealers),
			fmt.Sprintf("%d", faulty),
		)
		tbl.Render()
		return nil
	},
}
