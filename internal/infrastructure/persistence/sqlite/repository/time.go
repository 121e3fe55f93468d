package repository

import "time"

func nowUTCString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
