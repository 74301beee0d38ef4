package initiator

import (
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/cli/flags"
	cli_utils "github.com/quorumkit/threshold-dkg/cli/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/initiator"
)

func init() {
	flags.OperatorsInfoPathFlag(HealthCheck)
	flags.LogLevelFlag(HealthCheck)
	flags.LogFormatFlag(HealthCheck)
}

// HealthCheck pings every operator in the roster.
var HealthCheck = &cobra.Command{
	Use:   "ping",
	Short: "Ping ceremony operators",
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
		operatorsInfoPath, err := flags.GetOperatorsInfoPathFlagValue(cmd)
		if err != nil {
			return err
		}
		operators, err := cli_utils.ReadOperatorsInfoFile(operatorsInfoPath)
		if err != nil {
			logger.Fatal("failed to load operators", zap.Error(err))
		}
		// Health checks are unauthenticated, an ephemeral key is enough.
		signer, _, err := crypto.GenerateSigner()
		if err != nil {
			return err
		}
		dkgInitiator := initiator.New(logger, signer, operators)
		statuses := dkgInitiator.HealthCheck()

		tbl := table.New(os.Stdout)
		tbl.SetHeaders("Operator ID", "Address", "Status")
		down := 0
		for _, op := range operators {
			status := "online"
			if pingErr := statuses[op.ID]; pingErr != nil {
				status = pingErr.Error()
				down++
			}
			tbl.AddRow(fmt.Sprintf("%d", op.ID), op.Addr, status)
		}
		tbl.Render()
		if down > 0 {
			return errors.Errorf("%d of %d operators are unreachable", down, len(operators))
		}
		logger.Info("all operators are up and ready for a ceremony")
		return nil
	},
}
