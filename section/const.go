package section

// Envelope constants.
const (
	Magic = "GBX"

	// MinVersion and MaxVersion bound the supported container versions.
	MinVersion = 3
	MaxVersion = 6

	// UnknownByteVersion is the first version carrying the unknown byte.
	UnknownByteVersion = 4
	// UserDataVersion is the first version carrying the user-data blob.
	UserDataVersion = 6

	// HeavyBit marks a heavy chunk in the size field of the user-data table.
	HeavyBit uint32 = 1 << 31

	// UnknownByte is the value written for the unknown byte by default.
	UnknownByte byte = 'R'
)

// NoNodeCount is the node count of a Header built without one.
const NoNodeCount int32 = -1
