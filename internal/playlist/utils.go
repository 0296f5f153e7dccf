package playlist

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/videocarousel/internal/system"
)

// GeneratePath creates a timestamped playlist filename inside dir
func GeneratePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("playlist_%s.yaml", timestamp))
}

// FindLatest finds the most recent playlist file in dir
func FindLatest(dir string) (string, error) {
	return system.FindLatest(dir, ".yaml", ".yml")
}
