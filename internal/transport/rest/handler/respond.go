package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"rolecoach/internal/apperr"
	"rolecoach/internal/log"
)

const maxBodyBytes = 4 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError renders any error as {"error","code","detail"}. Internal
// errors never expose their cause.
func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		log.Error().Err(err).Msg("unhandled error")
		appErr = apperr.Internal(nil)
	}
	writeJSON(w, appErr.HTTPStatus, appErr)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ClientInput("request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.ClientInput("request body too large")
		}
		return apperr.ClientInput("invalid request body").WithDetail(err.Error())
	}
	return nil
}
