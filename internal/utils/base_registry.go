package utils

import (
	"fmt"
	"sort"
	"sync"
)

// RegistryValidator validates a key-value pair before registration
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry is a generic, thread-safe name table with optional validation
type BaseRegistry[K comparable, V any] struct {
	mu            sync.RWMutex
	items         map[K]V
	validator     RegistryValidator[K, V]
	registryName  string
	keyDescriptor string // e.g. "code generator"
}

// NewBaseRegistry creates an empty registry
func NewBaseRegistry[K comparable, V any](registryName, keyDesc string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{
		items:         make(map[K]V),
		registryName:  registryName,
		keyDescriptor: keyDesc,
	}
}

// SetValidator sets the validation function run on every registration
func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register adds or replaces an item
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return fmt.Errorf("%s registry: %w", r.registryName, err)
		}
	}

	r.items[key] = value
	return nil
}

// Get retrieves an item
func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, exists := r.items[key]
	return value, exists
}

// Filter returns the items matching predicate
func (r *BaseRegistry[K, V]) Filter(predicate func(K, V) bool) map[K]V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[K]V)
	for k, v := range r.items {
		if predicate(k, v) {
			result[k] = v
		}
	}
	return result
}

// Clone returns an independent registry with the same items and validator
func (r *BaseRegistry[K, V]) Clone() *BaseRegistry[K, V] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewBaseRegistry[K, V](r.registryName, r.keyDescriptor)
	clone.validator = r.validator
	for k, v := range r.items {
		clone.items[k] = v
	}
	return clone
}

// SortedKeys returns the registered keys in ascending order
func SortedKeys[V any](r *BaseRegistry[string, V]) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NotEmptyKeyValidator validates that a string key is not empty
func NotEmptyKeyValidator[V any](keyDesc string) RegistryValidator[string, V] {
	return func(key string, value V, existing map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

// ChainValidators combines multiple validators into one
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validator := range validators {
			if validator != nil {
				if err := validator(key, value, existing); err != nil {
					return err
				}
			}
		}
		return nil
	}
}
