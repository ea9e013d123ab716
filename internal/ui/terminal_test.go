package ui

import "testing"

func TestShouldUseColorEnvOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"NoColorDisables", map[string]string{"NO_COLOR": "1"}, false},
		{"NoColorBeatsForce", map[string]string{"NO_COLOR": "x", "CLICOLOR_FORCE": "1"}, false},
		{"ForceEnables", map[string]string{"CLICOLOR_FORCE": "1"}, true},
		{"ForceTrimsWhitespace", map[string]string{"CLICOLOR_FORCE": " 1 "}, true},
		{"CliColorZeroDisables", map[string]string{"CLICOLOR": "0"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"NO_COLOR", "CLICOLOR_FORCE", "CLICOLOR"} {
				t.Setenv(key, "")
			}
			for key, val := range tt.env {
				t.Setenv(key, val)
			}
			if got := ShouldUseColor(); got != tt.want {
				t.Fatalf("ShouldUseColor() = %v, want %v", got, tt.want)
			}
		})
	}
}
