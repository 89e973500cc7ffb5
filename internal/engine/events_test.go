package engine

import (
	"encoding/json"
	"testing"
)

func TestVisualEventCarriesCoordinates(t *testing.T) {
	b, err := json.Marshal(VisualEvent{
		Kind: "projectile", FromX: 3, FromY: 4, ToX: 7, ToY: 8, SourceID: 12,
	})
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]float64{
		"from_x": 3, "from_y": 4, "to_x": 7, "to_y": 8,
	} {
		got, ok := m[key].(float64)
		if !ok || got != want {
			t.Errorf("%s = %v, want %v", key, m[key], want)
		}
	}
}
