package patchstore

import "fmt"

// Redis key pattern helpers
//
// All keys and Pub/Sub channels are namespaced by instance name so several
// patch libraries can share one Redis server.
//
// Key pattern: kipple:{instance_name}:{entity}:{uuid}
// Channel pattern: kipple:{instance_name}:{event_type}_events

// PatchKey returns the Redis key for a stored patch.
// Pattern: kipple:{instance_name}:patch:{patch_id}
func PatchKey(instanceName, patchID string) string {
	return fmt.Sprintf("kipple:%s:patch:%s", instanceName, patchID)
}

// PatchIndexKey returns the key of the ZSET indexing patches by creation time.
// Pattern: kipple:{instance_name}:patches
func PatchIndexKey(instanceName string) string {
	return fmt.Sprintf("kipple:%s:patches", instanceName)
}

// PatchEventsChannel returns the Pub/Sub channel announcing saved patches.
// Pattern: kipple:{instance_name}:patch_events
func PatchEventsChannel(instanceName string) string {
	return fmt.Sprintf("kipple:%s:patch_events", instanceName)
}
