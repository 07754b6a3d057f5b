// Package httpjson regroupe les helpers de réponse JSON des handlers HTTP.
package httpjson

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorBody{Error: msg})
}

// WriteCodedError ajoute un code stable, exploitable par les clients.
func WriteCodedError(w http.ResponseWriter, status int, code, msg string) {
	Write(w, status, errorBody{Error: msg, Code: code})
}
