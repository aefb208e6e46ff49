package platform

import "errors"

var ErrResolution = errors.New("platform resolution failed")
