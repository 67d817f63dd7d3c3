package codec

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ErrMissingResults signals a response body without a "results" object.
var ErrMissingResults = errors.New("response has no results")

// Encode marshals v and converts every key to camelCase.
func Encode(v any) ([]byte, error) {
	generic, err := toGeneric(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode query")
	}
	out, err := json.Marshal(KeysToCamel(generic))
	if err != nil {
		return nil, errors.Wrap(err, "encode query")
	}
	return out, nil
}

// DecodeResults reads the "results" member of a response body, converts
// every key to snake_case and unmarshals it into out.
func DecodeResults(body []byte, out any) error {
	var envelope map[string]any
	if err := unmarshal(body, &envelope); err != nil {
		return errors.Wrap(err, "decode response")
	}
	results, ok := envelope["results"]
	if !ok || results == nil {
		return ErrMissingResults
	}
	return Decode(results, out)
}

// DecodeBody converts every key of a JSON body to snake_case and unmarshals
// it into out.
func DecodeBody(body []byte, out any) error {
	var generic any
	if err := unmarshal(body, &generic); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return Decode(generic, out)
}

// Decode converts the keys of a generic JSON value to snake_case and
// unmarshals it into out.
func Decode(generic any, out any) error {
	raw, err := json.Marshal(KeysToSnake(generic))
	if err != nil {
		return errors.Wrap(err, "decode response")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// unmarshal keeps numbers as json.Number so large integers survive the
// generic round trip.
func unmarshal(raw []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}
