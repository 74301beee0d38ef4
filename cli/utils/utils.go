package utils

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quorumkit/threshold-dkg/pkgs/load"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// SetGlobalLogger builds a zap logger from the level and encoding flags and
// installs it as the process-wide default.
func SetGlobalLogger(levelName, format, name string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown log level %q", levelName)
	}
	cfg := zap.NewProductionConfig()
	switch format {
	case "json":
	case "console":
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	zap.ReplaceGlobals(logger)
	return zap.L().Named(name), nil
}

// ReadOperatorsInfoFile reads the operator roster from path.
func ReadOperatorsInfoFile(operatorsInfoPath string) ([]*wire.Operator, error) {
	data, err := os.ReadFile(operatorsInfoPath)
	if err != nil {
		return nil, errors.Wrap(err, "read operators info file")
	}
	return load.OperatorsJSON(data)
}

// StringSliceToUintArray parses a slice of decimal strings.
func StringSliceToUintArray(flagdata []string) ([]uint64, error) {
	partsarr := make([]uint64, 0, len(flagdata))
	for i := 0; i < len(flagdata); i++ {
		opid, err := strconv.ParseUint(flagdata[i], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "cant load operator err")
		}
		partsarr = append(partsarr, opid)
	}
	return partsarr, nil
}
