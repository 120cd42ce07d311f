package snapshot

// Config holds configuration for the snapshot file cache.
type Config struct {
	// Dir is the root directory of the per-world snapshot files.
	Dir string `mapstructure:"dir" default:"data"`
	// CompressionLevel is the gzip level, 1 (fastest) to 9 (smallest).
	CompressionLevel int `mapstructure:"compression_level" default:"6"`
}
