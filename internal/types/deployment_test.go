package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDeploymentTextRoundTrip(t *testing.T) {
	var d Deployment
	if err := json.Unmarshal([]byte(`"docker on one VM"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.IsStructured() {
		t.Fatalf("string deployment reported structured")
	}
	text, ok := d.Text()
	if !ok || text != "docker on one VM" {
		t.Fatalf("Text() = %q, %v", text, ok)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"docker on one VM"` {
		t.Fatalf("shape changed: %s", out)
	}
}

func TestDeploymentStructuredRoundTrip(t *testing.T) {
	raw := `{"strategy":"kubernetes","regions":["eu","us"],"replicas":3}`
	var d Deployment
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !d.IsStructured() {
		t.Fatalf("object deployment reported text")
	}
	if m, ok := d.Structured(); !ok || m["strategy"] != "kubernetes" {
		t.Fatalf("Structured() = %v, %v", m, ok)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got, want map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("remarshal parse: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &want); err != nil {
		t.Fatalf("raw parse: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("object changed:\n got %v\nwant %v", got, want)
	}
}

func TestDeploymentRejectsOtherTypes(t *testing.T) {
	var d Deployment
	if err := json.Unmarshal([]byte(`42`), &d); err == nil {
		t.Fatalf("number accepted as deployment")
	}
	if err := json.Unmarshal([]byte(`["a"]`), &d); err == nil {
		t.Fatalf("array accepted as deployment")
	}
}

func TestDeploymentString(t *testing.T) {
	if s := TextDeployment("bare metal").String(); s != "bare metal" {
		t.Fatalf("String() = %q", s)
	}
	d := StructuredDeployment(map[string]any{"strategy": "k8s"})
	if s := d.String(); s == "" {
		t.Fatalf("structured String() empty")
	}
}
