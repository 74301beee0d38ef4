package initiator

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	cli_utils "github.com/quorumkit/threshold-dkg/cli/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/initiator"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/load"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/validator"
)

// ceremonyTimeout bounds how long the initiator waits for all operators to
// publish their results.
const ceremonyTimeout = 5 * time.Minute

func init() {
	flags.PrivateKeyFlag(StartCeremony)
	flags.OperatorsInfoPathFlag(StartCeremony)
	flags.FaultyFlag(StartCeremony)
	flags.OutputPathFlag(StartCeremony)
	flags.LogLevelFlag(StartCeremony)
	flags.LogFormatFlag(StartCeremony)
}

// StartCeremony kicks off a key generation ceremony across the operator
// roster and waits for every operator to report the same public key set.
var StartCeremony = &cobra.Command{
	Use:   "init",
	Short: "Initiates a key generation ceremony",
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, err := flags.GetLogLevelFlagValue(cmd)
		if err != nil {
			return err
		}
		logFormat, err := flags.GetLogFormatFlagValue(cmd)
		if err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(logLevel, logFormat, "dkg-initiator")
		if err != nil {
			return err
		}
		privKeyPath, err := flags.GetPrivateKeyFlagValue(cmd)
		if err != nil {
			return err
		}
		signer, err := load.Signer(privKeyPath)
		if err != nil {
			logger.Fatal("failed to load initiator private key", zap.Error(err))
		}
		operatorsInfoPath, err := flags.GetOperatorsInfoPathFlagValue(cmd)
		if err != nil {
			return err
		}
		operators, err := cli_utils.ReadOperatorsInfoFile(operatorsInfoPath)
		if err != nil {
			logger.Fatal("failed to load operators", zap.Error(err))
		}
		faulty, err := flags.GetFaultyFlagValue(cmd)
		if err != nil {
			return err
		}
		outputPath, err := flags.GetOutputPathFlagValue(cmd)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(outputPath, 0o700); err != nil {
			logger.Fatal("failed to create output directory", zap.Error(err))
		}

		dkgInitiator := initiator.New(logger, signer, operators)
		identifier, err := dkgInitiator.StartCeremony(faulty)
		if err != nil {
			logger.Fatal("failed to start ceremony", zap.Error(err))
		}
		logger.Info("ceremony started", zap.String("id", utils.IDString(identifier)))

		ctx, cancel := context.WithTimeout(context.Background(), ceremonyTimeout)
		defer cancel()
		publicSet, results, err := dkgInitiator.AwaitResults(ctx, identifier)
		if err != nil {
			logger.Fatal("ceremony failed", zap.Error(err))
		}
		if _, err := validator.ValidateResults(results, len(operators), faulty); err != nil {
			logger.Fatal("operators reported inconsistent results", zap.Error(err))
		}

		publicSetPath := filepath.Join(outputPath, fmt.Sprintf("publicset-%s.json", utils.IDString(identifier)))
		if err := keystore.SavePublicKeySet(publicSetPath, publicSet); err != nil {
			logger.Fatal("failed to store public key set", zap.Error(err))
		}
		logger.Info("ceremony finished", zap.String("publicSetPath", publicSetPath))

		pubBytes, err := publicSet.PublicKey().ToBytes()
		if err != nil {
			return err
		}
		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Ceremony ID", "Group Public Key", "Threshold", "Operators")
		tbl.AddRow(
			utils.IDString(identifier),
			hex.EncodeToString(pubBytes),
			fmt.Sprintf("%d", publicSet.Threshold()),
			fmt.Sprintf("%d", len(operators)),
		)
		tbl.Render()
		return nil
	},
}
