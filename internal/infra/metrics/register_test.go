package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegisterToPrefixesSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterTo(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterTo(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}

	SetBuildInfo("v1.2.3", "abc123", " JA ")
	IncHandoff("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
		if f.GetName() == namespace+"_build_info" {
			labels := map[string]string{}
			for _, l := range f.GetMetric()[0].GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["version"] != "v1.2.3" || labels["locale"] != "ja" || labels["go_version"] == "" {
				t.Errorf("build_info labels = %v", labels)
			}
		}
	}
	for _, name := range []string{"build_info", "reservations_handed_off_total"} {
		if !found[namespace+"_"+name] {
			t.Errorf("missing %s_%s in %v", namespace, name, found)
		}
	}
}

func TestNormBlankIsUnknown(t *testing.T) {
	if got := norm("  "); got != "unknown" {
		t.Errorf("norm(blank) = %q", got)
	}
	if got := norm(" Saved "); got != "saved" {
		t.Errorf("norm = %q", got)
	}
}
