package store

import "errors"

var (
	// ErrPlanLimit means the current plan refuses the operation; the caller
	// should surface an upgrade prompt.
	ErrPlanLimit = errors.New("plan limit reached")

	// ErrSoleOwner protects the last remaining owner of a workspace from
	// demotion or removal.
	ErrSoleOwner = errors.New("workspace must keep at least one owner")

	// ErrDefaultServiceType means a built-in service type cannot be removed.
	ErrDefaultServiceType = errors.New("default service types cannot be removed")

	// ErrNoCredentials means no sealed payment credentials are stored.
	ErrNoCredentials = errors.New("no payment credentials stored")
)
