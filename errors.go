package composer

import "errors"

var (
	// ErrLayerNotFound is reported when a mutation targets an id that is not
	// in the project. Public mutation methods treat it as a no-op.
	ErrLayerNotFound = errors.New("composer: layer not found")

	// ErrAssetDecodeFailure is memoized per source key when an image cannot
	// be read or decoded. The layer renders as empty.
	ErrAssetDecodeFailure = errors.New("composer: asset decode failure")

	// ErrStaleSurface is returned when a frame or resize callback reaches a
	// surface that has been detached. Callers treat it as a no-op.
	ErrStaleSurface = errors.New("composer: stale surface access")
)
