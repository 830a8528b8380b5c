package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/mediagate/mediagate/internal/extractor"
)

// writeGatewayError emits the same {success:false,error:{code,message}}
// envelope shape every extraction/delivery failure uses, so a client never
// has to special-case a middleware rejection differently from a handler
// one.
func writeGatewayError(w http.ResponseWriter, status int, code, message string) {
	envelope := extractor.NewErrorEnvelope(
		extractor.NewError(extractor.Code(code), ""),
		extractor.ResponseMeta{AccessMode: "public", PublicContent: true},
	)
	envelope.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}
