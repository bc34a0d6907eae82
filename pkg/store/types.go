package store

// Errors
var (
	ErrPackageNotFound = &StoreError{"package not found"}
	ErrFlagNotFound    = &StoreError{"flag not found"}
)

// StoreError represents a flag store error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// PackageInfo is the resolved metadata for one package.
type PackageInfo struct {
	Name          string `json:"name"`
	PackageID     uint32 `json:"package_id"`
	BooleanOffset uint32 `json:"boolean_offset"`
}

// FlagInfo is the resolved metadata and value for one flag.
type FlagInfo struct {
	Package   string `json:"package"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	FlagIndex uint16 `json:"flag_index"`
	Value     bool   `json:"value"`
}

// Stats summarizes a loaded flag store.
type Stats struct {
	Container   string `json:"container"`
	NumPackages uint32 `json:"num_packages"`
	NumFlags    uint32 `json:"num_flags"`
}
