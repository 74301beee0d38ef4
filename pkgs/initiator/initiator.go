// Package initiator drives a ceremony from the outside: it tells every
// operator to start an instance and collects their results.
package initiator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/client"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

const resultPollInterval = 500 * time.Millisecond

// Initiator holds the identity used to sign init messages and the
// operator set it talks to.
type Initiator struct {
	Logger    *zap.Logger
	Client    *client.Client
	Signer    crypto.Signer
	Operators []*wire.Operator
}

func New(logger *zap.Logger, signer crypto.Signer, operators []*wire.Operator) *Initiator {
	return &Initiator{
		Logger:    logger,
		Client:    client.New(logger),
		Signer:    signer,
		Operators: operators,
	}
}

// StartCeremony sends a signed init message to every operator. All of
// them must accept for the ceremony to proceed; the returned
// identifier names the instance on each operator.
func (c *Initiator) StartCeremony(faulty uint64) ([24]byte, error) {
	identifier := utils.NewID()
	init := &wire.Init{Operators: c.Operators, Faulty: faulty}
	byts, err := init.Encode()
	if err != nil {
		return identifier, err
	}
	signed, err := wire.Sign(&wire.Transport{
		Type:       wire.InitMessageType,
		Identifier: identifier,
		Data:       byts,
		Version:    wire.Version,
	}, c.Signer)
	if err != nil {
		return identifier, err
	}
	raw, err := signed.Encode()
	if err != nil {
		return identifier, err
	}

	c.Logger.Info("starting ceremony",
		zap.String("ceremony", utils.IDString(identifier)),
		zap.Int("operators", len(c.Operators)),
		zap.Uint64("faulty", faulty))
	_, errs := c.Client.SendToAll("init", raw, c.Operators)
	for id, err := range errs {
		return identifier, errors.Wrapf(client.ProcessError(err), "operator %d rejected init", id)
	}
	return identifier, nil
}

// AwaitResults polls the operators until every one of them published a
// result, then checks they all derived the same public key set.
func (c *Initiator) AwaitResults(ctx context.Context, identifier [24]byte) (*crypto.PublicKeySet, []*wire.Result, error) {
	results := make([]*wire.Result, len(c.Operators))
	pending := len(c.Operators)
	ticker := time.NewTicker(resultPollInterval)
	defer ticker.Stop()
	for pending > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, errors.Wrap(ctx.Err(), "waiting for ceremony results")
		case <-ticker.C:
		}
		for i, op := range c.Operators {
			if results[i] != nil {
				continue
			}
			resp, err := c.Client.GetAndCollect(op, fmt.Sprintf("results/%s", utils.IDString(identifier)))
			if err != nil {
				continue
			}
			result := &wire.Result{}
			if err := json.Unmarshal(resp, result); err != nil {
				c.Logger.Warn("operator sent malformed result", zap.Uint64("operator", op.ID), zap.Error(err))
				continue
			}
			results[i] = result
			pending--
		}
	}

	pks, err := crypto.PublicKeySetFromBytes(results[0].PublicKeySet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse public key set")
	}
	for i, result := range results[1:] {
		other, err := crypto.PublicKeySetFromBytes(result.PublicKeySet)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "parse public key set of operator %d", c.Operators[i+1].ID)
		}
		if !pks.Equal(other) {
			return nil, nil, errors.Errorf("operator %d derived a different public key set", c.Operators[i+1].ID)
		}
	}
	return pks, results, nil
}

// HealthCheck pings every operator and reports who is reachable.
func (c *Initiator) HealthCheck() map[uint64]error {
	status := make(map[uint64]error, len(c.Operators))
	for _, op := range c.Operators {
		resp, err := c.Client.GetAndCollect(op, "health_check")
		if err != nil {
			status[op.ID] = client.ProcessError(err)
			continue
		}
		pong := &wire.Pong{}
		if err := json.Unmarshal(resp, pong); err != nil {
			status[op.ID] = errors.Wrap(err, "malformed pong")
			continue
		}
		status[op.ID] = nil
	}
	return status
}
