package operator

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	cli_utils "github.com/quorumkit/threshold-dkg/cli/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/load"
	"github.com/quorumkit/threshold-dkg/pkgs/operator"
)

func init() {
	flags.PrivateKeyFlag(StartNode)
	flags.OperatorIDFlag(StartNode)
	flags.OperatorPortFlag(StartNode)
	flags.OutputPathFlag(StartNode)
	flags.KeystorePasswordFlag(StartNode)
	flags.LogLevelFlag(StartNode)
	flags.LogFormatFlag(StartNode)
	flags.PrivateKeyFlag(GenerateOperatorKeysCmd)
}

// StartNode runs a ceremony operator until interrupted.
var StartNode = &cobra.Command{
	Use:   "start-node",
	Short: "Starts a ceremony operator node",
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, err := flags.GetLogLevelFlagValue(cmd)
		if err != nil {
			return err
		}
		logFormat, err := flags.GetLogFormatFlagValue(cmd)
		if err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(logLevel, logFormat, "dkg-operator")
		if err != nil {
			return err
		}
		privKeyPath, err := flags.GetPrivateKeyFlagValue(cmd)
		if err != nil {
			return err
		}
		signer, err := load.Signer(privKeyPath)
		if err != nil {
			logger.Fatal("failed to load operator private key", zap.Error(err))
		}
		operatorID, err := flags.GetOperatorIDFlagValue(cmd)
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
		port, err := flags.GetOperatorPortFlagValue(cmd)
		if err != nil {
			return err
		}
		srv := operator.New(signer, logger, &operator.Config{
			OperatorID:       operatorID,
			OutputPath:       outputPath,
			KeystorePassword: password,
		})
		logger.Info("starting operator node",
			zap.Uint64("id", operatorID),
			zap.Uint64("port", port),
			zap.String("pubKey", hex.EncodeToString(signer.PublicKey())))
		if err := srv.Start(uint16(port)); err != nil {
			logger.Fatal("error running operator node", zap.Error(err))
		}
		return nil
	},
}

// GenerateOperatorKeysCmd writes a fresh envelope key seed to disk.
var GenerateOperatorKeysCmd = &cobra.Command{
	Use:   "generate-operator-keys",
	Short: "Generates an operator signing key",
	RunE: func(cmd *cobra.Command, args []string) error {
		privKeyPath, err := flags.GetPrivateKeyFlagValue(cmd)
		if err != nil {
			return err
		}
		signer, err := load.GenerateSignerFile(privKeyPath)
		if err != nil {
			return err
		}
		fmt.Printf("operator key written to %s\n", privKeyPath)
		fmt.Printf("public key: %s\n", hex.EncodeToString(signer.PublicKey()))
		return nil
	},
}
