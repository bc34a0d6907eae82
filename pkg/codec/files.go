package codec

// Standard on-disk names for a container's storage files.
const (
	PackageMapFile = "package.map"
	FlagMapFile    = "flag.map"
	FlagValFile    = "flag.val"
)
