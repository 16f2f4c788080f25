package utils

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// IOCtlPtr はファイルに対してポインタを引数とするioctlを発行する
// 構造体やバッファを読み書きするリクエストで使う
func IOCtlPtr(file *os.File, request uintptr, ptr unsafe.Pointer) error {
	return control(file, func(fd uintptr) error {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, request, uintptr(ptr))
		if errno != 0 {
			return errno
		}
		return nil
	})
}

// control はファイルディスクリプタを直接使う処理を実行する
// file.Fd()はファイルをブロッキングモードに戻してしまうため使わない
func control(file *os.File, fn func(fd uintptr) error) error {
	rc, err := file.SyscallConn()
	if err != nil {
		return fmt.Errorf("failed to get raw connection: %w", err)
	}
	var opErr error
	if err := rc.Control(func(fd uintptr) {
		opErr = fn(fd)
	}); err != nil {
		return err
	}
	return opErr
}
