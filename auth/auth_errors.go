package auth

import "errors"

var (
	NoStateErr    = errors.New("session state is required")
	NoRepoErr     = errors.New("session repo is required")
	NoPackageErr  = errors.New("session holds no package credentials")
	NoOperatorErr = errors.New("session holds no operator credentials")
)
