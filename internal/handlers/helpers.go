package handlers

import (
	"encoding/json"
	"net/http"
)

// decodeBody decodes a JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
