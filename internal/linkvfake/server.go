package linkvfake

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/lattice-systems/distnode/internal/envelope"
)

// readCasBody is the union of the two request shapes lin-kv answers:
// read {key, msg_id} and cas {key, from, to, create_if_not_exists,
// msg_id}.
type readCasBody struct {
	Type              string          `json:"type"`
	MsgID             int64           `json:"msg_id"`
	Key               string          `json:"key"`
	From              json.RawMessage `json:"from,omitempty"`
	To                json.RawMessage `json:"to,omitempty"`
	CreateIfNotExists bool            `json:"create_if_not_exists,omitempty"`
}

// Serve reads envelopes destined for "lin-kv" off stdoutR (a node's
// stdout) and writes lin-kv's replies onto stdinW (the same node's
// stdin), following lin-kv's read/cas wire contract. Envelopes destined
// elsewhere are forwarded, decoded, onto other. Serve returns when
// stdoutR reaches EOF.
func Serve(store *Store, stdoutR io.Reader, stdinW io.Writer, other chan<- envelope.Envelope) error {
	dec := json.NewDecoder(stdoutR)
	enc := json.NewEncoder(stdinW)

	for {
		var env envelope.Envelope
		if err := dec.Decode(&env); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if env.Dest != "lin-kv" {
			if other != nil {
				other <- env
			}
			continue
		}

		var req readCasBody
		if err := envelope.Decode(env.Body, &req); err != nil {
			continue
		}

		reply := store.handle(req)
		if err := enc.Encode(envelope.Envelope{
			Src:  "lin-kv",
			Dest: env.Src,
			Body: reply,
		}); err != nil {
			return err
		}
	}
}

// handle executes one read/cas request against the store and returns the
// reply body (read_ok/cas_ok/error).
func (s *Store) handle(req readCasBody) json.RawMessage {
	switch req.Type {
	case "read":
		value, ok := s.Read(req.Key)
		if !ok {
			return mustMarshal(map[string]interface{}{
				"type":        "error",
				"code":        20,
				"text":        "key does not exist",
				"in_reply_to": req.MsgID,
			})
		}
		return mustMarshal(map[string]interface{}{
			"type":        "read_ok",
			"value":       json.RawMessage(value),
			"in_reply_to": req.MsgID,
		})

	case "cas":
		if err := s.CAS(req.Key, req.From, req.To, req.CreateIfNotExists); err != nil {
			return mustMarshal(map[string]interface{}{
				"type":        "error",
				"code":        22,
				"text":        err.Error(),
				"in_reply_to": req.MsgID,
			})
		}
		return mustMarshal(map[string]interface{}{
			"type":        "cas_ok",
			"in_reply_to": req.MsgID,
		})

	default:
		return mustMarshal(map[string]interface{}{
			"type":        "error",
			"code":        10,
			"text":        "unsupported lin-kv request",
			"in_reply_to": req.MsgID,
		})
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
