// Package client is the HTTP side of ceremony fan-out: it posts
// signed transports to operator endpoints and collects the responses.
package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

// reqResult represents one operator's response to a fan-out request.
type reqResult struct {
	operatorID uint64
	err        error
	result     []byte
}

type Client struct {
	Logger *zap.Logger
	Client *req.Client
}

func New(logger *zap.Logger) *Client {
	client := req.C()
	client.SetTimeout(30 * time.Second)
	return &Client{
		Logger: logger,
		Client: client,
	}
}

// SendAndCollect posts data to one operator and reads the response.
// Non-2xx responses are surfaced as errors, decoding the error payload
// when the operator sent one.
func (c *Client) SendAndCollect(op *wire.Operator, method string, data []byte) ([]byte, error) {
	r := c.Client.R()
	r.SetBodyBytes(data)
	res, err := r.Post(fmt.Sprintf("%v/%v", op.Addr, method))
	if err != nil {
		return nil, err
	}
	resdata, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("operator responded", zap.Uint64("operator", op.ID), zap.String("method", method))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errmsg, parseErr := wire.ParseAsError(resdata)
		if parseErr == nil {
			return nil, errors.Errorf("operator %d: %v", op.ID, errmsg)
		}
		return nil, errors.Errorf("operator %d failed with: %s", op.ID, string(resdata))
	}
	return resdata, nil
}

// GetAndCollect requests a GET route from one operator.
func (c *Client) GetAndCollect(op *wire.Operator, method string) ([]byte, error) {
	r := c.Client.R()
	res, err := r.Get(fmt.Sprintf("%v/%v", op.Addr, method))
	if err != nil {
		return nil, err
	}
	resdata, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("operator responded",
		zap.String("addr", op.Addr),
		zap.String("method", method),
		zap.Int("status", res.StatusCode))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, errors.Errorf("operator %d failed with: %s", op.ID, string(resdata))
	}
	return resdata, nil
}

// SendToAll posts the same message to every operator concurrently and
// waits for all responses. Each failure is reported per operator.
func (c *Client) SendToAll(method string, msg []byte, operators []*wire.Operator) (map[uint64][]byte, map[uint64]error) {
	errs := make(map[uint64]error)
	resc := make(chan reqResult, len(operators))
	for _, op := range operators {
		op := op
		go func() {
			res, err := c.SendAndCollect(op, method, msg)
			resc <- reqResult{
				operatorID: op.ID,
				err:        err,
				result:     res,
			}
		}()
	}
	responses := make(map[uint64][]byte)
	for i := 0; i < len(operators); i++ {
		res := <-resc
		if res.err != nil {
			errs[res.operatorID] = res.err
			continue
		}
		responses[res.operatorID] = res.result
	}
	return responses, errs
}

// ProcessError translates low-level transport failures into hints the
// operator of the CLI can act on.
func ProcessError(err error) error {
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return errors.Wrap(err, "the requested server is not responding, not a ceremony endpoint")
	}
	if strings.Contains(err.Error(), "no such host") {
		return errors.Wrap(err, "the requested server IP is not reachable")
	}
	return err
}
