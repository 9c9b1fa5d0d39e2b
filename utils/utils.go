package utils

import (
	"math/rand"
	"os"
	"time"

	"github.com/Luismorlan/blogmux/utils/dotenv"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

var random = rand.New(rand.NewSource(time.Now().UnixNano()))

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

func IsProdEnv() bool {
	return os.Getenv("BLOG_ENV") == dotenv.ProdEnv
}

// RandomAlphabetString returns a lower case string of length n, not suitable
// for anything security related.
func RandomAlphabetString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[random.Intn(len(alphabet))]
	}
	return string(b)
}
