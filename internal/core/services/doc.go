// Package services implements the driving port interfaces.
// Services contain the core heading pipeline: provider selection,
// provider construction, stream lifecycle and settings. They orchestrate
// calls to driven ports (adapters) and never touch a platform directly.
package services
