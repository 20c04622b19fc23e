package version

import "testing"

func TestGetCurrentVersion(t *testing.T) {
	if got := GetCurrentVersion("prod"); got != Version {
		t.Errorf("GetCurrentVersion(prod) = %q, want %q", got, Version)
	}
	if got := GetCurrentVersion("dev"); got != DevVersion {
		t.Errorf("GetCurrentVersion(dev) = %q, want %q", got, DevVersion)
	}
	if got := GetCurrentVersion("demo"); got != DevVersion {
		t.Errorf("GetCurrentVersion(demo) = %q, want %q", got, DevVersion)
	}
}
