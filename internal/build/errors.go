package build

import "errors"

var (
	ErrBuild = errors.New("build failed")
	ErrStage = errors.New("unknown stage")
)
