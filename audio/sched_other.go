//go:build !linux

package audio

import "errors"

func setRealtime(int) error {
	return errors.New("realtime scheduling is only supported on linux")
}
