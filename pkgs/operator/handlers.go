package operator

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/quorumkit/threshold-dkg/pkgs/utils"
	"github.com/quorumkit/threshold-dkg/pkgs/wire"
)

func (s *Server) initHandler(writer http.ResponseWriter, request *http.Request) {
	s.Logger.Debug("incoming init message")
	rawdata, err := io.ReadAll(request.Body)
	if err != nil {
		utils.WriteErrorResponse(s.Logger, writer, err, http.StatusBadRequest)
		return
	}
	signedInitMsg, err := wire.DecodeSignedTransport(rawdata)
	if err != nil {
		utils.WriteErrorResponse(s.Logger, writer, err, http.StatusBadRequest)
		return
	}
	if signedInitMsg.Message.Type != wire.InitMessageType {
		utils.WriteErrorResponse(s.Logger, writer, errors.New("received wrong message type"), http.StatusBadRequest)
		return
	}
	reqid := signedInitMsg.Message.Identifier
	logger := s.Logger.With(zap.String("reqid", utils.IDString(reqid)))
	logger.Debug("creating instance with init message data")
	if err := s.State.InitInstance(reqid, signedInitMsg); err != nil {
		logger.Error("error creating instance", zap.Error(err))
		utils.WriteErrorResponse(s.Logger, writer, err, http.StatusBadRequest)
		return
	}
	logger.Info("instance started successfully")
	writer.WriteHeader(http.StatusOK)
}

func (s *Server) dkgHandler(writer http.ResponseWriter, request *http.Request) {
	s.Logger.Debug("received a ceremony protocol message")
	rawdata, err := io.ReadAll(request.Body)
	if err != nil {
		utils.WriteErrorResponse(s.Logger, writer, errors.Wrapf(err, "operator %d", s.State.Config.OperatorID), http.StatusBadRequest)
		return
	}
	if err := s.State.ProcessMessage(rawdata); err != nil {
		utils.WriteErrorResponse(s.Logger, writer, errors.Wrapf(err, "operator %d", s.State.Config.OperatorID), http.StatusBadRequest)
		return
	}
	writer.WriteHeader(http.StatusOK)
}

func (s *Server) healthHandler(writer http.ResponseWriter, request *http.Request) {
	b, err := s.State.Pong()
	if err != nil {
		utils.WriteErrorResponse(s.Logger, writer, err, http.StatusBadRequest)
		return
	}
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(b); err != nil {
		s.Logger.Error("error writing health_check response", zap.Error(err))
	}
}

func (s *Server) resultsHandler(writer http.ResponseWriter, request *http.Request) {
	id, err := utils.ParseID(chi.URLParam(request, "id"))
	if err != nil {
		utils.WriteErrorResponse(s.Logger, writer, err, http.StatusBadRequest)
		return
	}
	b, err := s.State.Result(id)
	if err != nil {
		utils.WriteErrorResponse(s.Logger, writer, err, http.StatusNotFound)
		return
	}
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write(b); err != nil {
		s.Logger.Error("error writing results response", zap.Error(err))
	}
}
