package view

import "errors"

var (
	// ErrInvalidConfig reports a malformed declaration: both or neither of
	// Definition/Definer set, an empty name, bad columns, or an empty query.
	ErrInvalidConfig = errors.New("invalid view config")

	// ErrUnsupportedMaterialization reports a materialized view requested on
	// a dialect without native support and without table simulation allowed.
	ErrUnsupportedMaterialization = errors.New("materialization not supported by dialect")

	// ErrRefreshNotSupported reports a refresh of a non-materialized view.
	ErrRefreshNotSupported = errors.New("refresh not supported for non-materialized view")

	// ErrDuplicateView reports a second registration under an existing name.
	ErrDuplicateView = errors.New("duplicate view")

	// ErrRegistryFrozen reports a registration after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")
)
