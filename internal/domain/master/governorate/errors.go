package governorate

import "errors"

var ErrGovernorateNotFound = errors.New("governorate not found")
