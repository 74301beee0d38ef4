package verify

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	cli_utils "github.com/quorumkit/threshold-dkg/cli/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/validator"
)

func init() {
	flags.OutputPathFlag(Verify)
	flags.CeremonyIDFlag(Verify)
	flags.ShareIndicesFlag(Verify)
	flags.LogLevelFlag(Verify)
	flags.LogFormatFlag(Verify)
}

// Verify checks that a ceremony output directory is internally consistent.
var Verify = &cobra.Command{
	Use:   "verify",
	Short: "Verifies a ceremony output directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, err := flags.GetLogLevelFlagValue(cmd)
		if err != nil {
			return err
		}
		logFormat, err := flags.GetLogFormatFlagValue(cmd)
		if err != nil {
			return err
		}
		logger, err := cli_utils.SetGlobalLogger(logLevel, logFormat, "dkg-verify")
		if err != nil {
			return err
		}
		dir, err := flags.GetOutputPathFlagValue(cmd)
		if err != nil {
			return err
		}
		idString, err := flags.GetCeremonyIDFlagValue(cmd)
		if err != nil {
			return err
		}
		identifier, err := utils.ParseID(idString)
		if err != nil {
			return err
		}
		rawIndices, err := flags.GetShareIndicesFlagValue(cmd)
		if err != nil {
			return err
		}
		indices, err := cli_utils.StringSliceToUintArray(rawIndices)
		if err != nil {
			return err
		}

		publicSet, err := validator.ValidateOutputDir(dir, identifier, indices)
		if err != nil {
			logger.Error("ceremony directory is invalid", zap.Error(err))
			return err
		}
		logger.Info("ceremony directory is valid")

		pubBytes, err := publicSet.PublicKey().ToBytes()
		if err != nil {
			return err
		}
		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Directory", "Ceremony ID", "Group Public Key", "Threshold", "Shares Checked")
		tbl.AddRow(
			dir,
			idString,
			hex.EncodeToString(pubBytes),
			fmt.Sprintf("%d", publicSet.Threshold()),
			fmt.Sprintf("%d", len(indices)),
		)
		tbl.Render()
		return nil
	},
}
