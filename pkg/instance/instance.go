package instance

import "os"

// GetID returns the server instance identifier or a default value.
func GetID() string {
	if id := os.Getenv("SHOPLIVE_INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
