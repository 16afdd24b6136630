package version

// Version is the current logtally release
const Version = "0.3.0"
