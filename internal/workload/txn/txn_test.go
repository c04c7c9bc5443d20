package txn

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/lattice-systems/distnode/internal/config"
	"github.com/lattice-systems/distnode/internal/node"
)

func TestTxnAppendThenRead(t *testing.T) {
	h := New()
	var stdout bytes.Buffer
	n := node.New(h, config.Defaults(), &stdout, &bytes.Buffer{})

	input := strings.Join([]string{
		`{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"txn","msg_id":2,"txn":[["append",1,100],["append",1,200],["r",1]]}}`,
		`{"src":"c1","dest":"n1","body":{"type":"txn","msg_id":3,"txn":[["r",2]]}}`,
	}, "\n") + "\n"

	if err := n.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var results []json.RawMessage
	for _, line := range strings.Split(strings.TrimSpace(stdout.String()), "\n") {
		var env struct {
			Body json.RawMessage `json:"body"`
		}
		json.Unmarshal([]byte(line), &env)
		var body map[string]interface{}
		json.Unmarshal(env.Body, &body)
		if body["type"] == "txn_ok" {
			b, _ := json.Marshal(body["txn"])
			results = append(results, b)
		}
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 txn_ok replies, got %d", len(results))
	}
	if string(results[0]) != `[["append",1,100],["append",1,200],["r",1,[100,200]]]` {
		t.Fatalf("unexpected first txn result: %s", results[0])
	}
	if string(results[1]) != `[["r",2,null]]` {
		t.Fatalf("unexpected second txn result: %s", results[1])
	}
}
