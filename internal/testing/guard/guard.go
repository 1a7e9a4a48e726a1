package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("STUDYHALL_TEST_MODE") == "" {
			_ = os.Setenv("STUDYHALL_TEST_MODE", "1")
		}
	})
}
