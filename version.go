package shiori

// Version is the library release version reported by the CLI.
const Version = "0.3.0"
