package planner

import "testing"

func TestRemoveTrailingCommas(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"object", `{"a": 1,}`, `{"a": 1}`},
		{"array", `{"a": [1, 2,]}`, `{"a": [1, 2]}`},
		{"whitespace before closer", "{\"a\": 1,\n  }", "{\"a\": 1}"},
		{"nested occurrences", `{"a": [1,], "b": {"c": 2,},}`, `{"a": [1], "b": {"c": 2}}`},
		{"clean input untouched", `{"a": [1, 2], "b": "x, y"}`, `{"a": [1, 2], "b": "x, y"}`},
		{"comma between values kept", `{"a": 1, "b": 2}`, `{"a": 1, "b": 2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemoveTrailingCommas(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRemoveTrailingCommas_Idempotent(t *testing.T) {
	in := `{"a": [1, 2,], "b": {"c": 3,},}`
	once := RemoveTrailingCommas(in)
	twice := RemoveTrailingCommas(once)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}
