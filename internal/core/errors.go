package core

import "errors"

var (
	errStorageDisabled = errors.New("object storage not configured")
	errNotStored       = errors.New("upload was not stored")
	errNoProvider      = errors.New("no analysis provider configured")
)
