package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSplitTools(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []string
	}{
		{"simple", "Go,Postgres", []string{"Go", "Postgres"}},
		{"whitespace and empties", "React, , TypeScript ,", []string{"React", "TypeScript"}},
		{"single", "Go", []string{"Go"}},
		{"empty input", "", nil},
		{"only separators", " , ,,", nil},
		{"duplicates kept in order", "Go,chi,Go", []string{"Go", "chi", "Go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitTools(tt.csv); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTools(%q) = %v; want %v", tt.csv, got, tt.want)
			}
		})
	}
}

func TestProjectJSONOmitsEmptyOptionals(t *testing.T) {
	raw, err := json.Marshal(Project{Title: "p"})
	if err != nil {
		t.Fatalf("marshal project: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}

	for _, key := range []string{"description", "github_url", "cover_url"} {
		if _, present := m[key]; present {
			t.Errorf("unset %s serialized; want omitted", key)
		}
	}
	if _, present := m["published"]; !present {
		t.Error("published flag missing from payload")
	}
}
