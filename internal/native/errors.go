package native

import "errors"

var (
	ErrConfigure = errors.New("configure phase failed")
	ErrBuild     = errors.New("build phase failed")
)
