package metrics

import (
	"strings"
	"testing"
)

func TestCurrentHostIsStable(t *testing.T) {
	a, b := CurrentHost(), CurrentHost()
	if a != b {
		t.Fatalf("host changed between calls: %+v vs %+v", a, b)
	}
	if a.Cores < 0 {
		t.Fatalf("negative core count %d", a.Cores)
	}
}

func TestHostString(t *testing.T) {
	h := Host{CPU: "Test CPU", Cores: 4, AVX2: true}
	got := h.String()
	for _, want := range []string{`cpu="Test CPU"`, "cores=4", "avx2=true", "fma=false"} {
		if !strings.Contains(got, want) {
			t.Fatalf("%q missing %q", got, want)
		}
	}
}
