package gset

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lattice-systems/distnode/internal/config"
	"github.com/lattice-systems/distnode/internal/node"
)

func TestGSetAddAndRead(t *testing.T) {
	h := New()
	var stdout bytes.Buffer
	n := node.New(h, config.Defaults(), &stdout, &bytes.Buffer{})

	input := strings.Join([]string{
		`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"add","msg_id":2,"element":1}}`,
		`{"src":"c1","dest":"n1","body":{"type":"add","msg_id":3,"element":2}}`,
		`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":4}}`,
	}, "\n") + "\n"

	if err := n.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var readOk map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		var env struct {
			Body json.RawMessage `json:"body"`
		}
		json.Unmarshal([]byte(line), &env)
		var body map[string]interface{}
		json.Unmarshal(env.Body, &body)
		if body["type"] == "read_ok" {
			readOk = body
		}
	}
	if readOk == nil {
		t.Fatalf("no read_ok seen")
	}
	value := readOk["value"].([]interface{})
	if len(value) != 2 {
		t.Fatalf("expected 2 elements, got %v", value)
	}
}

func TestGSetReplicateUnionsElements(t *testing.T) {
	h := New()
	var stdout bytes.Buffer
	n := node.New(h, config.Defaults(), &stdout, &bytes.Buffer{})

	input := strings.Join([]string{
		`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"add","msg_id":2,"element":1}}`,
		`{"src":"n2","dest":"n1","body":{"type":"replicate","message":[2,3]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":3}}`,
	}, "\n") + "\n"

	if err := n.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	h.mu.Lock()
	size := len(h.elements)
	h.mu.Unlock()
	if size != 3 {
		t.Fatalf("expected union of 3 elements, got %d", size)
	}
}
