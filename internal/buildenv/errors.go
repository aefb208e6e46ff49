package buildenv

import "errors"

var ErrEnvironment = errors.New("environment capture failed")
