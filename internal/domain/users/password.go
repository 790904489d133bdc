package users

import "golang.org/x/crypto/bcrypt"

// BcryptCost is the fixed work factor for credential hashing. It is a server
// constant, never client-supplied.
const BcryptCost = 12

// dummyHash is compared against when a login names an unknown user, so the
// unknown-user and wrong-password paths cost roughly the same.
var dummyHash = mustHash("city-backend-dummy-credential")

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
