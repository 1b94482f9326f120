package config

import "github.com/inconshreveable/log15/v3"

var log = log15.New("module", "config")
