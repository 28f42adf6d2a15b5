package connectedcar

import "errors"

var NoAPIHostErr = errors.New("session holds no api host or client id")
