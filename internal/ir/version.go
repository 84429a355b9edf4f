package ir

// Version constants for the IR schema and tool.
const (
	// IRVersion is the circuit IR schema version.
	IRVersion = "1"

	// ToolVersion is the Q-Net tool version.
	ToolVersion = "0.1.0"
)
