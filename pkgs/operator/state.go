package operator

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/client"
	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/dkg"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

const MaxInstances = 1024
const MaxInstanceTime = 5 * time.Minute

var ErrMissingInstance = errors.New("got message to instance that I don't have, send Init first")
var ErrAlreadyExists = errors.New("got init msg for existing instance")
var ErrMaxInstances = errors.New("max number of instances ongoing, please wait")

type InstanceID [24]byte

// Switch tracks the ceremony instances running on this operator.
type Switch struct {
	Logger *zap.Logger
	Config *Config
	Signer crypto.Signer
	Client *client.Client

	mtx              sync.RWMutex
	instances        map[InstanceID]*Instance
	instanceInitTime map[InstanceID]time.Time
}

func NewSwitch(signer crypto.Signer, logger *zap.Logger, config *Config) *Switch {
	return &Switch{
		Logger:           logger,
		Config:           config,
		Signer:           signer,
		Client:           client.New(logger),
		instances:        make(map[InstanceID]*Instance, MaxInstances),
		instanceInitTime: make(map[InstanceID]time.Time, MaxInstances),
	}
}

// InitInstance validates an init message and starts a ceremony
// instance for it.
func (s *Switch) InitInstance(reqID [24]byte, signedInit *wire.SignedTransport) error {
	if err := wire.CheckVersion(signedInit.Message.Version); err != nil {
		return err
	}
	if err := signedInit.Verify(); err != nil {
		return errors.Wrap(err, "init message signature isn't valid")
	}
	init, err := wire.DecodeInit(signedInit.Message.Data)
	if err != nil {
		return err
	}
	params, ourID, err := s.validateInit(init)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	l := len(s.instances)
	if l >= MaxInstances {
		cleaned := s.cleanInstances()
		if l-cleaned >= MaxInstances {
			s.mtx.Unlock()
			return ErrMaxInstances
		}
	}
	if _, ok := s.instances[InstanceID(reqID)]; ok {
		tm := s.instanceInitTime[InstanceID(reqID)]
		if !time.Now().After(tm.Add(MaxInstanceTime)) {
			s.mtx.Unlock()
			return ErrAlreadyExists
		}
		delete(s.instances, InstanceID(reqID))
		delete(s.instanceInitTime, InstanceID(reqID))
	}
	s.mtx.Unlock()

	inst, err := s.CreateInstance(reqID, init, params, ourID)
	if err != nil {
		return err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, ok := s.instances[InstanceID(reqID)]; ok {
		return ErrAlreadyExists
	}
	s.instances[InstanceID(reqID)] = inst
	s.instanceInitTime[InstanceID(reqID)] = time.Now()
	return nil
}

// validateInit checks the operator set and locates this operator in
// it. Ids must be exactly 1..len(operators), since they double as the
// evaluation points of the shared polynomials.
func (s *Switch) validateInit(init *wire.Init) (dkg.Params, uint64, error) {
	params, err := dkg.NewParams(uint64(len(init.Operators)), init.Faulty)
	if err != nil {
		return dkg.Params{}, 0, err
	}
	seen := make(map[uint64]struct{}, len(init.Operators))
	ourID := uint64(0)
	for _, op := range init.Operators {
		if op.ID == 0 || op.ID > params.Dealers {
			return dkg.Params{}, 0, errors.Errorf("operator id %d out of range 1..%d", op.ID, params.Dealers)
		}
		if _, ok := seen[op.ID]; ok {
			return dkg.Params{}, 0, errors.Errorf("duplicate operator id %d", op.ID)
		}
		seen[op.ID] = struct{}{}
		if bytes.Equal(op.PubKey, s.Signer.PublicKey()) {
			ourID = op.ID
		}
	}
	if ourID == 0 {
		return dkg.Params{}, 0, errors.New("my operator is missing inside the operator list")
	}
	if s.Config.OperatorID != 0 && s.Config.OperatorID != ourID {
		return dkg.Params{}, 0, errors.Errorf("init assigns id %d but operator is configured as %d", ourID, s.Config.OperatorID)
	}
	return params, ourID, nil
}

// cleanInstances is not thread safe, callers hold the lock.
func (s *Switch) cleanInstances() int {
	count := 0
	for id, instime := range s.instanceInitTime {
		if time.Now().After(instime.Add(MaxInstanceTime)) {
			delete(s.instances, id)
			delete(s.instanceInitTime, id)
			count++
		}
	}
	return count
}

// ProcessMessage routes a signed ceremony message to its instance.
func (s *Switch) ProcessMessage(raw []byte) error {
	st, err := wire.DecodeSignedTransport(raw)
	if err != nil {
		return err
	}
	if st.Message == nil {
		return errors.New("signed transport without message")
	}
	id := InstanceID(st.Message.Identifier)

	s.mtx.RLock()
	inst, ok := s.instances[id]
	s.mtx.RUnlock()
	if !ok {
		return ErrMissingInstance
	}
	return inst.Process(st)
}

// Pong reports this operator's identity for health checks.
func (s *Switch) Pong() ([]byte, error) {
	return json.Marshal(&wire.Pong{ID: s.Config.OperatorID, PubKey: s.Signer.PublicKey()})
}

// Result returns the outcome of a finished ceremony instance.
func (s *Switch) Result(reqID [24]byte) ([]byte, error) {
	s.mtx.RLock()
	inst, ok := s.instances[InstanceID(reqID)]
	s.mtx.RUnlock()
	if !ok {
		return nil, ErrMissingInstance
	}
	return inst.Result()
}
