package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Date is set at build time via -ldflags.
var Date = "unknown"

// Example selects the sketch a firmware image boots into. jcmake sets it with
// -ldflags "-X jcboard/internal/buildinfo.Example=<name>".
var Example = ""

// Short returns a compact build identifier for UI/logging.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// LDFlags returns the linker flags that stamp example and version into a build.
func LDFlags(example, version string) string {
	s := "-X jcboard/internal/buildinfo.Example=" + example
	if version != "" {
		s += " -X jcboard/internal/buildinfo.Version=" + version
	}
	return s
}
