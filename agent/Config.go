// Package agent defines agent configurations and a registry which
// allows them to be serialized without knowing their concrete type
package agent

// Config represents a configuration for creating an agent
type Config interface {
	// Type returns the type of agent the Config describes
	Type() Type

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
