package agent

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Type represents a specific type of an agent Config.
// Config's with this type describe agents of the corresponding type.
type Type string

const (
	DoubleDQN Type = "DoubleDQN"
)

// Registered types with the package. Once a Type has been registered
// with this map, a TypedConfig with that type can be deserialized.
//
// No Type's are registered wtih this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var (
	registryLock    sync.RWMutex
	registeredTypes = make(map[Type]reflect.Type)
)

// Register registers an agent's Type with a concrete Config type
// so that upon deserialization of a TypedConfig, Configs of type
// agentType are deserialized into the concrete type of config.
//
// Register panics if agentType is already registered with a different
// concrete type.
func Register(agentType Type, config Config) {
	registryLock.Lock()
	defer registryLock.Unlock()

	ty := reflect.TypeOf(config)
	if prev, ok := registeredTypes[agentType]; ok && prev != ty {
		panic(fmt.Sprintf("register: type %v already registered to %v",
			agentType, prev))
	}
	registeredTypes[agentType] = ty
}

// Registered returns the registered agent Types in sorted order
func Registered() []Type {
	registryLock.RLock()
	defer registryLock.RUnlock()

	types := make([]Type, 0, len(registeredTypes))
	for t := range registeredTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func lookup(agentType Type) (reflect.Type, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	ty, ok := registeredTypes[agentType]
	return ty, ok
}
