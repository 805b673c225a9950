package proto

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrEmptyFrame is returned for zero-length input.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrUnknownType is returned when the envelope type is not recognised.
	ErrUnknownType = errors.New("unknown message type")
)

// Decode parses a text frame into one of the message structs of this
// package, returned by value.
func Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case TypeWelcome:
		return decodeAs[Welcome](data)
	case TypeSnapshot:
		return decodeAs[Snapshot](data)
	case TypePos:
		return decodeAs[Pos](data)
	case TypeHistory:
		return decodeAs[History](data)
	case TypeChat:
		return decodeAs[Chat](data)
	case TypeJoin:
		return decodeAs[Join](data)
	case TypeLeave:
		return decodeAs[Leave](data)
	case TypeHello:
		return decodeAs[Hello](data)
	case TypeMove:
		return decodeAs[Move](data)
	case TypeSay:
		return decodeAs[Say](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

func decodeAs[T any](data []byte) (any, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
