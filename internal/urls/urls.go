package urls

// Documentation URLs for guides and troubleshooting.
// All URLs point to the project documentation site.

// GettingStarted is the quick start guide for linking a Roborock
// account and creating the first configuration entry.
const GettingStarted = "https://skovtroldenhugo.github.io/roborock/getting-started/"

// AccountLogin covers the email verification code login flow,
// including what to do when codes never arrive or keep being rejected.
const AccountLogin = "https://skovtroldenhugo.github.io/roborock/account-login/"

// CameraOptions documents the map camera transform options
// (scale, rotation, and trim margins) and how they affect rendering.
const CameraOptions = "https://skovtroldenhugo.github.io/roborock/camera-options/"

// TroubleshootingGuide provides solutions to common issues with the
// account service, regional endpoints, and entry storage.
const TroubleshootingGuide = "https://skovtroldenhugo.github.io/roborock/troubleshooting/"
