package domain

// DefaultKeyPrefix namespaces every key and index the library touches.
const DefaultKeyPrefix = "vecscope:"

// CollectionPrefix returns the hash key prefix of a collection: "<prefix><collection>:".
func CollectionPrefix(prefix, collection string) string {
	return prefix + collection + ":"
}

// IndexName returns the FT index name of a collection.
func IndexName(prefix, collection string) string {
	return CollectionPrefix(prefix, collection) + "idx"
}

// DocumentKey returns the hash key holding a document.
func DocumentKey(prefix, collection, id string) string {
	return CollectionPrefix(prefix, collection) + id
}
