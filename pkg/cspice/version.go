package cspice

var (
	Version         = "v0.0.0-in-progress"
	UpstreamToolkit = "N0067"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// UpstreamVersion returns the toolkit version reported by the linked library
// when a token is supplied and the call succeeds; otherwise it falls back to
// the toolkit release the bindings were written against.
func UpstreamVersion(t *Token) string {
	if t != nil {
		if v, err := ToolkitVersion(t); err == nil && v != "" {
			return v
		}
	}
	return "CSPICE_" + UpstreamToolkit
}
