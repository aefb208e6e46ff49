package project

import "errors"

var ErrConfig = errors.New("invalid configuration")
