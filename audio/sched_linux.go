package audio

import "golang.org/x/sys/unix"

// setRealtime moves the calling thread to SCHED_RR.
func setRealtime(priority int) error {
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   unix.SCHED_RR,
		Priority: uint32(priority),
	}
	return unix.SchedSetAttr(0, &attr, 0)
}
