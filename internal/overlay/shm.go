package overlay

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ArrayBolt3/kloak-v2/internal/randsrc"
)

// shmRetries is the number of randomly-named shm_open(O_EXCL) attempts
// before giving up, carried forward from the original daemon's
// create_shm_file retry convention.
const shmRetries = 100

const shmDir = "/dev/shm"

// createShmBuffer creates a randomly-named POSIX shared-memory object,
// sizes it to size bytes, maps it, and unlinks the name immediately so the
// fd is the only remaining handle. A failure after exhausting shmRetries
// names is fatal per the error taxonomy's "shared memory creation failing
// after 100 retries" entry.
func createShmBuffer(rng *randsrc.Source, size int) (fd int, data []byte, err error) {
	var lastErr error
	for i := 0; i < shmRetries; i++ {
		path := shmDir + rng.ShmName()

		f, openErr := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0600)
		if openErr != nil {
			if openErr == unix.EEXIST {
				lastErr = openErr
				continue
			}
			return -1, nil, fmt.Errorf("overlay: shm open: %w", openErr)
		}

		if err := ftruncateRetryEINTR(f, int64(size)); err != nil {
			_ = unix.Close(f)
			_ = unix.Unlink(path)
			return -1, nil, fmt.Errorf("overlay: shm ftruncate: %w", err)
		}

		mem, mmapErr := unix.Mmap(f, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		_ = unix.Unlink(path)
		if mmapErr != nil {
			_ = unix.Close(f)
			return -1, nil, fmt.Errorf("overlay: shm mmap: %w", mmapErr)
		}

		return f, mem, nil
	}
	return -1, nil, fmt.Errorf("overlay: exhausted %d shm name retries: %w", shmRetries, lastErr)
}

// ftruncateRetryEINTR retries ftruncate across signal interruption, per the
// "retried until it completes or returns a distinct error" discipline.
func ftruncateRetryEINTR(fd int, size int64) error {
	for {
		err := unix.Ftruncate(fd, size)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}
