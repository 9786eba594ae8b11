package instance

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

const envWorkerID = "FREIGHTLINK_WORKER_ID"

// GetID returns the worker instance identifier. It falls back to the hostname
// and finally to a random id so lock owners never collide.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(envWorkerID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + uuid.NewString()[:8]
	}
	return "worker-" + uuid.NewString()
}
