package intersect

import (
	stderrors "errors"

	"github.com/go-drift/inview/pkg/errors"
)

// ErrUnavailable is returned when a watcher is requested from a platform
// that cannot provide one.
var ErrUnavailable = stderrors.New("visibility watching is not available")

// Unavailable is the platform of headless environments.
var Unavailable Platform = unavailable{}

type unavailable struct{}

func (unavailable) Available() bool { return false }

func (unavailable) NewObserver(Callback, Options) (Observer, error) {
	return nil, &errors.Error{
		Op:   "intersect.Unavailable.NewObserver",
		Kind: errors.KindPlatform,
		Err:  ErrUnavailable,
	}
}
