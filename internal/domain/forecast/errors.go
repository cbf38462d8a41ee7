package forecast

import "errors"

// ErrInvalidYear is returned for a year offset outside 1..MaxYears.
var ErrInvalidYear = errors.New("forecast year must be between 1 and 3")
