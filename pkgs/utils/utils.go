package utils

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func WriteJSON(filepath string, data any) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", " ")
	return encoder.Encode(data)
}

// NewID returns a fresh random identifier for a ceremony instance.
func NewID() [24]byte {
	var id [24]byte
	b := uuid.New()
	b2 := uuid.New()
	copy(id[:16], b[:])
	copy(id[16:], b2[:8])
	return id
}

// IDString renders a ceremony identifier for logs and filenames.
func IDString(id [24]byte) string {
	return hex.EncodeToString(id[:])
}

// WriteErrorResponse logs an error and reports it to the HTTP caller
// as a JSON body.
func WriteErrorResponse(logger *zap.Logger, writer http.ResponseWriter, err error, statusCode int) {
	logger.Error("request failed", zap.Error(err))
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	body, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return
	}
	if _, err := writer.Write(body); err != nil {
		logger.Error("error writing error response", zap.Error(err))
	}
}

// ParseID parses an identifier previously rendered by IDString.
func ParseID(s string) ([24]byte, error) {
	var id [24]byte
	byts, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(byts) != len(id) {
		return id, errors.Errorf("ceremony id must be %d bytes, got %d", len(id), len(byts))
	}
	copy(id[:], byts)
	return id, nil
}
