// Package envelope provides the wire message structure shared by every
// workload engine: a source, a destination, and an open-map body tagged by
// "type".
package envelope

import "encoding/json"

// Envelope is one line of the stdin/stdout protocol.
type Envelope struct {
	Src  string          `json:"src"`
	Dest string          `json:"dest"`
	Body json.RawMessage `json:"body"`
}

// Head carries the fields every handler needs before it knows the rest of
// the body's shape: the type tag and the two correlation ids. Bodies that
// omit msg_id or in_reply_to leave the corresponding pointer nil.
type Head struct {
	Type      string `json:"type"`
	MsgID     *int64 `json:"msg_id,omitempty"`
	InReplyTo *int64 `json:"in_reply_to,omitempty"`
}

// ParseHead decodes just the dispatch-relevant fields of a body, ignoring
// any message-specific payload fields.
func ParseHead(body json.RawMessage) (Head, error) {
	var h Head
	if err := json.Unmarshal(body, &h); err != nil {
		return Head{}, err
	}
	return h, nil
}

// New builds an Envelope whose body is fields marshaled as a flat JSON
// object (type sits alongside msg_id, in_reply_to, and whatever
// message-specific fields the caller supplied).
func New(src, dest string, fields map[string]interface{}) (Envelope, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Src: src, Dest: dest, Body: body}, nil
}

// Decode unmarshals a body into an arbitrary destination value.
func Decode(body json.RawMessage, v interface{}) error {
	return json.Unmarshal(body, v)
}
