// Package instancelock не даёт запустить второй экземпляр бота на том же
// хосте: два процесса чистили бы канал и дрались за одни и те же сообщения.
package instancelock

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrLocked = errors.New("another instance is already running")

// errBusy возвращают платформенные lockFile, когда файл уже заблокирован.
var errBusy = errors.New("lock is held")

type Lock struct {
	f *os.File
}

// Acquire берёт эксклюзивную блокировку на path и пишет в файл свой PID.
// Блокировка снимается ОС и при аварийном завершении процесса.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		if errors.Is(err, errBusy) {
			if pid := readPID(path); pid > 0 {
				return nil, fmt.Errorf("%w (pid %d)", ErrLocked, pid)
			}
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{f: f}, nil
}

// Release снимает блокировку и удаляет файл. Повторный вызов безопасен.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	path := l.f.Name()
	err := unlockFile(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	_ = os.Remove(path)
	return err
}

func readPID(path string) int {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, _ := strconv.Atoi(strings.TrimSpace(string(raw)))
	return pid
}
