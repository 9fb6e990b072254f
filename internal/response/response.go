package response

import (
	"encoding/json"
	"net/http"
)

type APIResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// JSON writes a success envelope. The request id is echoed back so
// clients can quote it when reporting a broadcast that never arrived.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{
		Status:    "success",
		Data:      data,
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, APIResponse{
		Status:    "error",
		Message:   msg,
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
