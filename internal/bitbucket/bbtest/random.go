package bbtest

import "math/rand/v2"

const (
	_letters      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	_alphanumeric = _letters + "0123456789"
)

// RandomLetters returns a random string of n ASCII letters.
// It is a valid project key and repository name.
func RandomLetters(n int) string {
	return randomFrom(_letters, n)
}

// RandomString returns a random string of n ASCII letters and digits.
func RandomString(n int) string {
	return randomFrom(_alphanumeric, n)
}

func randomFrom(alphabet string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}
