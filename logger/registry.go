package logger

import (
	"slices"
	"sync"
)

// components holds loggers registered per engine component.
var components sync.Map // name -> *Logger

// Register installs l as the logger of component name, replacing any
// previous one.
func Register(name string, l *Logger) {
	components.Store(name, l)
}

// Unregister removes the logger of component name.
func Unregister(name string) {
	components.Delete(name)
}

// Get returns the logger registered for component name, or the global
// logger tagged with the component.
func Get(name string) *Logger {
	if l, ok := components.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// Registered returns the registered component names, sorted.
func Registered() []string {
	var names []string
	components.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	slices.Sort(names)
	return names
}
