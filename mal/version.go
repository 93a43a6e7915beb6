package mal

// Set at link time with -ldflags "-X github.com/d2718/mal/mal.Version=...".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)
