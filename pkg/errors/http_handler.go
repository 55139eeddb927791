package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DetailResponse is the DRF-style error body served by the stand-in API.
type DetailResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// WriteError writes err the way Django REST framework does: field errors as
// {"field": ["message"]}, everything else as {"detail": "..."}.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	status := appErr.StatusCode()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if len(appErr.Details) > 0 {
		return json.NewEncoder(w).Encode(fieldErrors(appErr.Details))
	}
	return json.NewEncoder(w).Encode(DetailResponse{
		Detail: appErr.Message,
		Code:   appErr.Code,
	})
}

func fieldErrors(details map[string]any) map[string][]string {
	out := make(map[string][]string, len(details))
	for field, v := range details {
		switch msgs := v.(type) {
		case []string:
			out[field] = msgs
		case []any:
			for _, m := range msgs {
				out[field] = append(out[field], fmt.Sprint(m))
			}
		default:
			out[field] = []string{fmt.Sprint(v)}
		}
	}
	return out
}
