package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var ErrEmptyPayload = errors.New("empty payload")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodePayload converts a generically decoded message payload, usually a
// map[string]any, into T.
func DecodePayload[T any](payload any) (T, error) {
	var result T
	if payload == nil {
		return result, ErrEmptyPayload
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return result, errors.WithMessage(err, "marshal json")
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, errors.WithMessagef(err, "unmarshal json to '%T'", result)
	}
	return result, nil
}
