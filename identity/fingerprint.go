package identity

import (
	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Fingerprint hashes structural parts of an entity
func Fingerprint(parts ...string) uint64 {
	var data []byte
	for _, part := range parts {
		data = append(data, part...)
		data = append(data, 0)
	}
	return highwayhash.Sum64(data, key)
}
