package operator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/client"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
	"github.com/quorumkit/threshold-dkg/pkgs/keystore"
	"github.com/quorumkit/threshold-dkg/pkgs/node"
	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

const (
	broadcastRetries = 20
	broadcastBackoff = 500 * time.Millisecond
)

// Instance is one running ceremony on this operator: the local node
// plus the peer set it exchanges messages with.
type Instance struct {
	Logger     *zap.Logger
	node       *node.LocalNode
	ops        map[uint64]*wire.Operator
	ourID      uint64
	identifier [24]byte
	signer     crypto.Signer
	httpClient *client.Client
	config     *Config

	mtx    sync.RWMutex
	result *node.Result
	runErr error
}

// CreateInstance starts the local node for one ceremony and wires its
// broadcasts to the peer operators.
func (s *Switch) CreateInstance(reqID [24]byte, init *wire.Init, params dkg.Params, ourID uint64) (*Instance, error) {
	ops := make(map[uint64]*wire.Operator, len(init.Operators))
	for _, op := range init.Operators {
		ops[op.ID] = op
	}
	inst := &Instance{
		Logger:     s.Logger.With(zap.String("instance", utils.IDString(reqID))),
		ops:        ops,
		ourID:      ourID,
		identifier: reqID,
		signer:     s.Signer,
		httpClient: s.Client,
		config:     s.Config,
	}
	n, err := node.New(&node.Opts{
		Logger:     inst.Logger,
		ID:         ourID,
		Params:     params,
		Identifier: reqID,
		BroadcastF: inst.broadcast,
	})
	if err != nil {
		return nil, err
	}
	inst.node = n

	ctx, cancel := context.WithTimeout(context.Background(), MaxInstanceTime)
	n.Start(ctx)
	go inst.awaitResult(cancel)
	return inst, nil
}

// broadcast signs an outgoing transport, posts it to the peers and
// loops it back to the local board. Delivery runs off the node loop so
// the protocol never blocks on the network.
func (i *Instance) broadcast(msg *wire.Transport) error {
	signed, err := wire.Sign(msg, i.signer)
	if err != nil {
		return err
	}
	byts, err := signed.Encode()
	if err != nil {
		return err
	}
	go func() {
		if err := i.node.Board().Deliver(msg); err != nil {
			i.Logger.Error("failed to deliver own broadcast", zap.Error(err))
		}
	}()

	for id, op := range i.ops {
		if id == i.ourID {
			continue
		}
		op := op
		go func() {
			// Peers may not have processed their init yet; retry until
			// the instance exists on their side.
			var lastErr error
			for attempt := 0; attempt < broadcastRetries; attempt++ {
				if _, lastErr = i.httpClient.SendAndCollect(op, "dkg", byts); lastErr == nil {
					return
				}
				time.Sleep(broadcastBackoff)
			}
			i.Logger.Warn("failed to deliver message to operator", zap.Uint64("operator", op.ID), zap.Error(lastErr))
		}()
	}
	return nil
}

// Process validates a peer's signed message and hands it to the node.
func (i *Instance) Process(st *wire.SignedTransport) error {
	msg := st.Message
	if err := wire.CheckVersion(msg.Version); err != nil {
		return err
	}
	op, ok := i.ops[msg.Sender]
	if !ok {
		return errors.Errorf("message from unknown operator %d", msg.Sender)
	}
	if !bytes.Equal(st.Signer, op.PubKey) {
		return errors.Errorf("message signer does not match operator %d", msg.Sender)
	}
	if err := st.Verify(); err != nil {
		return err
	}
	go func() {
		if err := i.node.Board().Deliver(msg); err != nil {
			i.Logger.Warn("failed to deliver peer message", zap.Uint64("operator", msg.Sender), zap.Error(err))
		}
	}()
	return nil
}

func (i *Instance) awaitResult(cancel context.CancelFunc) {
	defer cancel()
	<-i.node.Done()
	select {
	case result := <-i.node.ResultC:
		if err := i.saveResult(result); err != nil {
			i.Logger.Error("failed to persist ceremony result", zap.Error(err))
			i.setOutcome(nil, err)
			return
		}
		i.setOutcome(result, nil)
	case err := <-i.node.ErrorC:
		i.Logger.Error("ceremony failed", zap.Error(err))
		i.setOutcome(nil, err)
	}
}

func (i *Instance) saveResult(result *node.Result) error {
	if err := os.MkdirAll(i.config.OutputPath, 0o700); err != nil {
		return err
	}
	id := utils.IDString(i.identifier)
	sharePath := filepath.Join(i.config.OutputPath, fmt.Sprintf("share-%d-%s.json", i.ourID, id))
	if err := keystore.SaveKeyPart(sharePath, result.KeyPart, i.config.KeystorePassword); err != nil {
		return err
	}
	publicPath := filepath.Join(i.config.OutputPath, fmt.Sprintf("publicset-%s.json", id))
	return keystore.SavePublicKeySet(publicPath, result.PublicKeySet)
}

func (i *Instance) setOutcome(result *node.Result, err error) {
	i.mtx.Lock()
	defer i.mtx.Unlock()
	i.result = result
	i.runErr = err
}

// Result returns the public outcome of the instance once it finished.
func (i *Instance) Result() ([]byte, error) {
	i.mtx.RLock()
	defer i.mtx.RUnlock()
	if i.runErr != nil {
		return nil, i.runErr
	}
	if i.result == nil {
		return nil, errors.New("ceremony still running")
	}
	pksBytes, err := i.result.PublicKeySet.Bytes()
	if err != nil {
		return nil, err
	}
	return json.Marshal(&wire.Result{NodeID: i.result.NodeID, PublicKeySet: pksBytes})
}
