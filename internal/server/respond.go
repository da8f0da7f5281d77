package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// mustMarshal is only used on types that always encode.
func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// fallbackBody is returned with status 200 for every recoverable failure.
type fallbackBody struct {
	Error    string `json:"error"`
	Fallback bool   `json:"fallback"`
}

func softFallback(w http.ResponseWriter, message string) {
	jsonResponse(w, fallbackBody{Error: message, Fallback: true})
}

// spread places the members of a parsed JSON value at the top level of the
// response object and sets "fallback": false. Object keys are kept, array
// elements are keyed by index, a string is keyed by index per character, and
// other scalars contribute nothing.
func spread(value []byte) ([]byte, error) {
	v := gjson.ParseBytes(value)
	members := map[string]any{}
	switch {
	case v.IsObject():
		return sjson.SetBytes(value, "fallback", false)
	case v.IsArray():
		for i, el := range v.Array() {
			members[strconv.Itoa(i)] = json.RawMessage(el.Raw)
		}
	case v.Type == gjson.String:
		for i, r := range []rune(v.Str) {
			members[strconv.Itoa(i)] = string(r)
		}
	}
	members["fallback"] = false
	return json.Marshal(members)
}
