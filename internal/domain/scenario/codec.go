package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wireMutation is the JSON shape of one mutation.
type wireMutation struct {
	Type     Kind            `json:"type"`
	PlayerID string          `json:"player_id,omitempty"`
	Payload  *AddPlayer      `json:"payload,omitempty"`
	Patch    json.RawMessage `json:"patch,omitempty"`
}

// DecodeMutations parses and validates a JSON array of mutations.
func DecodeMutations(data []byte) ([]Mutation, error) {
	var wire []wireMutation
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMutation, err)
	}
	out := make([]Mutation, 0, len(wire))
	for i, w := range wire {
		m, err := decodeOne(w)
		if err != nil {
			return nil, fmt.Errorf("mutation %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeOne(w wireMutation) (Mutation, error) {
	switch Kind(strings.ToUpper(string(w.Type))) {
	case KindAddPlayer:
		if w.Payload == nil {
			return nil, fmt.Errorf("%w: ADD_PLAYER requires a payload", ErrInvalidMutation)
		}
		return NewAddPlayer(w.Payload.Player, w.Payload.Usage, w.Payload.Grade, w.Payload.Role)
	case KindRemovePlayer:
		return NewRemovePlayer(w.PlayerID)
	case KindUpdateUsage:
		var p UsagePatch
		if err := unmarshalPatch(w.Patch, &p); err != nil {
			return nil, err
		}
		return NewUpdateUsage(w.PlayerID, p)
	case KindUpdateGrade:
		var p GradePatch
		if err := unmarshalPatch(w.Patch, &p); err != nil {
			return nil, err
		}
		return NewUpdateGrade(w.PlayerID, p)
	case KindUpdateRole:
		var p RolePatch
		if err := unmarshalPatch(w.Patch, &p); err != nil {
			return nil, err
		}
		return NewUpdateRole(w.PlayerID, p)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMutation, w.Type)
	}
}

func unmarshalPatch(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: patch: %v", ErrInvalidMutation, err)
	}
	return nil
}

// EncodeMutations renders mutations in the wire shape accepted by DecodeMutations.
func EncodeMutations(mutations []Mutation) ([]byte, error) {
	wire := make([]wireMutation, 0, len(mutations))
	for i, m := range mutations {
		w := wireMutation{Type: m.Kind()}
		var patch any
		switch v := m.(type) {
		case AddPlayer:
			w.Payload = &v
		case RemovePlayer:
			w.PlayerID = v.PlayerID
		case UpdateUsage:
			w.PlayerID, patch = v.PlayerID, v.Patch
		case UpdateGrade:
			w.PlayerID, patch = v.PlayerID, v.Patch
		case UpdateRole:
			w.PlayerID, patch = v.PlayerID, v.Patch
		default:
			return nil, fmt.Errorf("%w: mutation %d has unsupported type %T", ErrInvalidMutation, i, m)
		}
		if patch != nil {
			raw, err := json.Marshal(patch)
			if err != nil {
				return nil, err
			}
			w.Patch = raw
		}
		wire = append(wire, w)
	}
	return json.Marshal(wire)
}
