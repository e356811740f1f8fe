package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// /tmp/
	//   shelf/ (.shelf)
	//     blink/
	//       examples/
	//   configured/ (shelf.yaml)
	//     servo/
	//   empty/

	baseDir := t.TempDir()
	shelfDir := filepath.Join(baseDir, "shelf")
	libDir := filepath.Join(shelfDir, "blink")
	nestedDir := filepath.Join(libDir, "examples")
	configuredDir := filepath.Join(baseDir, "configured")
	servoDir := filepath.Join(configuredDir, "servo")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, servoDir, emptyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(shelfDir, ".shelf"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configuredDir, ConfigFilename), []byte("naming: by-name\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{
			name:      "Start at Root",
			startPath: shelfDir,
			wantRoot:  shelfDir,
		},
		{
			name:      "Start in Library",
			startPath: libDir,
			wantRoot:  shelfDir,
		},
		{
			name:      "Start Nested Deeply",
			startPath: nestedDir,
			wantRoot:  shelfDir,
		},
		{
			name:      "Config File Marks Root",
			startPath: servoDir,
			wantRoot:  configuredDir,
		},
		{
			name:      "No Root Found",
			startPath: emptyDir,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}
