package stage

import "errors"

var ErrStaging = errors.New("staging failed")
