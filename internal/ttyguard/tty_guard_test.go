package ttyguard

import "testing"

func TestShouldSuppressTTYQueries(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		envRobot bool
		envTest  bool
		want     bool
	}{
		{"interactive", []string{"km", "--api", "http://localhost:8001"}, false, false, false},
		{"robot flag", []string{"km", "--robot-layout"}, false, false, true},
		{"robot single dash", []string{"km", "-robot-layout"}, false, false, true},
		{"snapshot with value", []string{"km", "--snapshot=out.png"}, false, false, true},
		{"report", []string{"km", "-report", "r.md"}, false, false, true},
		{"version", []string{"km", "--version"}, false, false, true},
		{"help", []string{"km", "-help"}, false, false, true},
		{"positional not a flag", []string{"km", "snapshot"}, false, false, false},
		{"env robot", []string{"km"}, true, false, true},
		{"env test", []string{"km"}, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldSuppressTTYQueries(tt.args, tt.envRobot, tt.envTest); got != tt.want {
				t.Errorf("shouldSuppressTTYQueries(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}
