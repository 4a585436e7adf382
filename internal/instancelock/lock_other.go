//go:build !unix && !windows

package instancelock

import "os"

// Здесь нет файловых блокировок: защита от второго экземпляра не работает.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
