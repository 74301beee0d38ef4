package node

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// RunLocalCeremony executes a complete ceremony with every node in
// process, fanning each broadcast out to all boards. It returns one
// result per node, ordered by node id. Useful for key generation on a
// single trusted machine and for exercising the full message flow.
func RunLocalCeremony(ctx context.Context, logger *zap.Logger, params dkg.Params) ([]*Result, error) {
	identifier := utils.NewID()
	logger = logger.With(zap.String("ceremony", utils.IDString(identifier)))

	nodes := make([]*LocalNode, params.Dealers)
	var deliveries conc.WaitGroup
	broadcast := func(msg *wire.Transport) error {
		for _, target := range nodes {
			target := target
			deliveries.Go(func() {
				if err := target.Board().Deliver(msg); err != nil {
					logger.Error("failed to deliver broadcast", zap.Error(err))
				}
			})
		}
		return nil
	}

	for id := uint64(1); id <= params.Dealers; id++ {
		n, err := New(&Opts{
			Logger:     logger,
			ID:         id,
			Params:     params,
			Identifier: identifier,
			BroadcastF: broadcast,
		})
		if err != nil {
			return nil, err
		}
		nodes[id-1] = n
	}
	for _, n := range nodes {
		n.Start(ctx)
	}
	for _, n := range nodes {
		select {
		case <-n.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	deliveries.Wait()

	results := make([]*Result, 0, len(nodes))
	for _, n := range nodes {
		select {
		case err := <-n.ErrorC:
			return nil, errors.Wrapf(err, "node %d failed", n.ID)
		case result := <-n.ResultC:
			results = append(results, result)
		}
	}
	return results, nil
}
