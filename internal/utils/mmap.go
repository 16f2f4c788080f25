package utils

import (
	"os"

	"golang.org/x/sys/unix"
)

// Mmap はファイルの先頭からsizeバイトを読み書き可能な共有メモリとしてマップする
func Mmap(file *os.File, size int) ([]byte, error) {
	var mem []byte
	err := control(file, func(fd uintptr) error {
		var err error
		mem, err = unix.Mmap(int(fd), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		return err
	})
	return mem, err
}

// Msync はマップしたメモリの内容をデバイスに反映する
func Msync(mem []byte) error {
	return unix.Msync(mem, unix.MS_SYNC)
}

// Munmap はマップを解除する
func Munmap(mem []byte) error {
	return unix.Munmap(mem)
}
