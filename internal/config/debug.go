package config

import "os"

func IsDebug() bool {
	return os.Getenv("VERIFID_DEBUG") == "1"
}
