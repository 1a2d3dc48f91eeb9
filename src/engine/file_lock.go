package engine

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// fileLock is an advisory flock(2) lock held on a collection file. Locks are
// only honoured by processes that also take them; they do not stop other
// writers.
type fileLock struct {
	file *os.File
}

// lockFile opens path and blocks until a shared or exclusive lock is granted.
// The file is created first when create is set.
func lockFile(path string, exclusive, create bool) (*fileLock, error) {
	flag, how := os.O_RDONLY, unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if create {
		flag |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return nil, err
	}

	for {
		err = unix.Flock(int(file.Fd()), how)
		if err != unix.EINTR {
			break
		}
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("error locking %s: %w", path, err)
	}

	return &fileLock{file: file}, nil
}

func (l *fileLock) Unlock() error {
	if l == nil {
		return nil
	}
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	return multierr.Append(err, l.file.Close())
}
