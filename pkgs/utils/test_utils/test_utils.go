package test_utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/crypto"
	"github.com/quorumkit/threshold-dkg/pkgs/operator"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

const TestKeystorePassword = "12345678"

// TestOperator is one operator under test: its envelope signer, the
// http test server and the directory its results land in.
type TestOperator struct {
	ID         uint64
	Signer     crypto.Signer
	HttpSrv    *httptest.Server
	Srv        *operator.Server
	OutputPath string
}

// CreateTestOperator spins up an operator server on an httptest
// listener. The server is torn down with the test.
func CreateTestOperator(t *testing.T, id uint64) *TestOperator {
	t.Helper()
	signer, _, err := crypto.GenerateSigner()
	require.NoError(t, err)
	outputPath := t.TempDir()
	srv := operator.New(signer, zap.NewNop(), &operator.Config{
		OperatorID:       id,
		OutputPath:       outputPath,
		KeystorePassword: TestKeystorePassword,
	})
	httpSrv := httptest.NewServer(srv.Router)
	t.Cleanup(httpSrv.Close)
	return &TestOperator{
		ID:         id,
		Signer:     signer,
		HttpSrv:    httpSrv,
		Srv:        srv,
		OutputPath: outputPath,
	}
}

// Wire returns the operator's wire descriptor for init messages.
func (op *TestOperator) Wire() *wire.Operator {
	return &wire.Operator{
		ID:     op.ID,
		Addr:   op.HttpSrv.URL,
		PubKey: op.Signer.PublicKey(),
	}
}
