package services

import (
	"crypto/rand"
	"math/big"

	"eventhub/internal/domain"
)

const (
	invitationCodeLength = 10
	// maxCodeAttempts bounds retries after a generated code collides in storage.
	maxCodeAttempts = 5
)

var (
	invitationCodeAlphabet   = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	registrationCodeAlphabet = []rune("0123456789")
)

func generateCode(alphabet []rune, length int) (string, error) {
	b := make([]rune, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

func generateInvitationCode() (string, error) {
	return generateCode(invitationCodeAlphabet, invitationCodeLength)
}

func generateRegistrationCode() (string, error) {
	return generateCode(registrationCodeAlphabet, domain.RegistrationCodeLength)
}
