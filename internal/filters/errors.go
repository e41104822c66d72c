package filters

import "errors"

var (
	// ErrUnknownConfigItem is returned for ids that were never declared in
	// the store's schema.
	ErrUnknownConfigItem = errors.New("unknown config item")
	// ErrValueOutOfRange is returned for combo indices outside the choices.
	ErrValueOutOfRange = errors.New("config value out of range")
	// ErrInvalidValue is returned when a value does not fit the item kind.
	ErrInvalidValue = errors.New("invalid config value")
	// ErrInvalidSchema reports a malformed ConfigItem list.
	ErrInvalidSchema = errors.New("invalid config schema")
	// ErrStoreInitialized is returned by a second InitStores call.
	ErrStoreInitialized = errors.New("config store already initialized")

	// ErrDuplicateFilterID is a wiring defect: two filters claim one id.
	ErrDuplicateFilterID = errors.New("duplicate filter id")
	// ErrUnknownFilter is returned for ids missing from the registry.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrRegistrySealed is returned when registering after Init.
	ErrRegistrySealed = errors.New("filter registry already initialized")
)
