package flags

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Flag names.
const (
	threshold         = "threshold"
	shares            = "shares"
	dealers           = "dealers"
	faulty            = "faulty"
	operatorsInfoPath = "operatorsInfoPath"
	privKey           = "privKey"
	keystorePassword  = "keystorePassword"
	operatorPort      = "port"
	outputPath        = "outputPath"
	operatorID        = "operatorID"
	logLevel          = "logLevel"
	logFormat         = "logFormat"
	ceremonyID        = "ceremonyID"
	shareIndices      = "shareIndices"
)

// ThresholdFlag adds the signing threshold flag to the command
func ThresholdFlag(c *cobra.Command) {
	AddPersistentIntFlag(c, threshold, 2, "Number of key parts needed to produce a signature", false)
}

// SharesFlag adds the share count flag to the command
func SharesFlag(c *cobra.Command) {
	AddPersistentIntFlag(c, shares, 4, "Number of key parts to derive", false)
}

// DealersFlag adds the dealer count flag to the command
func DealersFlag(c *cobra.Command) {
	AddPersistentIntFlag(c, dealers, 4, "Number of ceremony participants", false)
}

// FaultyFlag adds the fault tolerance flag to the command
func FaultyFlag(c *cobra.Command) {
	AddPersistentIntFlag(c, faulty, 1, "Number of tolerated faulty participants", false)
}

// OperatorsInfoPathFlag adds the operator roster file flag to the command
func OperatorsInfoPathFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, operatorsInfoPath, "", "Path to a JSON file with operators' IDs, IPs and public keys", false)
}

// PrivateKeyFlag adds the private key path flag to the command
func PrivateKeyFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, privKey, "", "Path to a hex-encoded ed25519 seed file", false)
}

// KeystorePasswordFlag adds the keystore password flag to the command
func KeystorePasswordFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, keystorePassword, "", "Password used to encrypt stored key parts", false)
}

// OperatorPortFlag adds the operator listening port flag to the command
func OperatorPortFlag(c *cobra.Command) {
	AddPersistentIntFlag(c, operatorPort, 3030, "Operator listening port", false)
}

// OutputPathFlag adds the results directory flag to the command
func OutputPathFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, outputPath, "./output", "Path to store ceremony results", false)
}

// OperatorIDFlag adds the operator ID flag to the command
func OperatorIDFlag(c *cobra.Command) {
	AddPersistentIntFlag(c, operatorID, 0, "Operator ID", false)
}

// LogLevelFlag adds the logger's log level flag to the command
func LogLevelFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, logLevel, "debug", "Defines logger's log level", false)
}

// LogFormatFlag adds the logger's encoding flag to the command
func LogFormatFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, logFormat, "json", "Defines logger's encoding, valid values are 'json' (default) and 'console'", false)
}

// CeremonyIDFlag adds the ceremony identifier flag to the command
func CeremonyIDFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, ceremonyID, "", "Hex identifier of the ceremony", false)
}

// ShareIndicesFlag adds the share indices flag to the command
func ShareIndicesFlag(c *cobra.Command) {
	AddPersistentStringSliceFlag(c, shareIndices, []string{"1", "2", "3", "4"}, "Indices of the key part files to check", false)
}

// GetThresholdFlagValue gets the signing threshold flag from the command
func GetThresholdFlagValue(c *cobra.Command) (uint64, error) {
	return c.Flags().GetUint64(threshold)
}

// GetSharesFlagValue gets the share count flag from the command
func GetSharesFlagValue(c *cobra.Command) (uint64, error) {
	return c.Flags().GetUint64(shares)
}

// GetDealersFlagValue gets the dealer count flag from the command
func GetDealersFlagValue(c *cobra.Command) (uint64, error) {
	return c.Flags().GetUint64(dealers)
}

// GetFaultyFlagValue gets the fault tolerance flag from the command
func GetFaultyFlagValue(c *cobra.Command) (uint64, error) {
	return c.Flags().GetUint64(faulty)
}

// GetOperatorsInfoPathFlagValue gets the operator roster file flag from the command
func GetOperatorsInfoPathFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(operatorsInfoPath)
}

// GetPrivateKeyFlagValue gets the private key path flag from the command
func GetPrivateKeyFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(privKey)
}

// GetKeystorePasswordFlagValue gets the keystore password flag from the command
func GetKeystorePasswordFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(keystorePassword)
}

// GetOperatorPortFlagValue gets the operator listening port flag from the command
func GetOperatorPortFlagValue(c *cobra.Command) (uint64, error) {
	return c.Flags().GetUint64(operatorPort)
}

// GetOutputPathFlagValue gets the results directory flag from the command
func GetOutputPathFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(outputPath)
}

// GetOperatorIDFlagValue gets the operator ID flag from the command
func GetOperatorIDFlagValue(c *cobra.Command) (uint64, error) {
	return c.Flags().GetUint64(operatorID)
}

// GetLogLevelFlagValue gets the logger's log level flag from the command
func GetLogLevelFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(logLevel)
}

// GetLogFormatFlagValue gets the logger's encoding flag from the command
func GetLogFormatFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(logFormat)
}

// GetCeremonyIDFlagValue gets the ceremony identifier flag from the command
func GetCeremonyIDFlagValue(c *cobra.Command) (string, error) {
	return c.Flags().GetString(ceremonyID)
}

// GetShareIndicesFlagValue gets the share indices flag from the command
func GetShareIndicesFlagValue(c *cobra.Command) ([]string, error) {
	return c.Flags().GetStringSlice(shareIndices)
}

// AddPersistentStringFlag adds a string flag to the command
func AddPersistentStringFlag(c *cobra.Command, flag, value, description string, isRequired bool) {
	req := ""
	if isRequired {
		req = " (required)"
	}

	c.PersistentFlags().String(flag, value, fmt.Sprintf("%s%s", description, req))

	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

// AddPersistentIntFlag adds a int flag to the command
func AddPersistentIntFlag(c *cobra.Command, flag string, value uint64, description string, isRequired bool) {
	req := ""
	if isRequired {
		req = " (required)"
	}

	c.PersistentFlags().Uint64(flag, value, fmt.Sprintf("%s%s", description, req))

	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}

// AddPersistentStringSliceFlag adds a string slice flag to the command
func AddPersistentStringSliceFlag(c *cobra.Command, flag string, value []string, description string, isRequired bool) {
	req := ""
	if isRequired {
		req = " (required)"
	}

	c.PersistentFlags().StringSlice(flag, value, fmt.Sprintf("%s%s", description, req))

	if isRequired {
		_ = c.MarkPersistentFlagRequired(flag)
	}
}
