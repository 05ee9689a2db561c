package version

const AppName = "anybot"

// Version is overridden at build time with -ldflags "-X anybot/internal/version.Version=...".
var Version = "dev"
