package instance

import "os"

// GetID returns the dyno/worker identifier the process runs as, or "local".
func GetID() string {
	for _, key := range []string{"DYNO", "INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
