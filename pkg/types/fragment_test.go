package types

import (
	"encoding/json"
	"testing"
)

func TestRecordMarshalJSON(t *testing.T) {
	rec := Record{
		Fields: map[string]any{
			"zebra":    "z",
			"apple":    float64(1),
			"chunk_id": "abc123",
		},
		Keys:    []string{"zebra", "apple", "chunk_id"},
		ChunkID: "abc123",
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"zebra":"z","apple":1,"chunk_id":"abc123"}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestRecordMarshalJSONEmpty(t *testing.T) {
	data, err := json.Marshal(Record{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Errorf("got %s, want {}", data)
	}
}

func TestConceptSpaceKey(t *testing.T) {
	data, err := json.Marshal(ConceptSpace{AllConcepts: [][]string{{"a", "b"}}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"all concepts":[["a","b"]]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}
