// Command keygen is an operator's tool for session tokens.
//
// It generates random token salts for the server config, and can mint or
// validate session tokens offline for debugging. Token composition:
//  [1:algorithm version][8:user id][4:expiration unix time][16:signature] = 29 bytes
// convertible to base64 without padding. All integers are little-endian.
package main

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"
)

const (
	tokenVersion    = 1
	tokenLength     = 1 + 8 + 4 + 16
	tokenSignedPart = 1 + 8 + 4
)

func main() {
	saltLen := flag.Int("salt", 0, "Length of the random token salt to generate, in bytes.")
	salt64 := flag.String("hmac_salt", "", "Base64-encoded salt for minting or validating a token.")
	uid := flag.Uint64("uid", 0, "Numeric user id to mint a token for.")
	lifetime := flag.Duration("expires_in", 24*time.Hour, "Lifetime of the minted token.")
	token := flag.String("validate", "", "Session token to validate.")

	flag.Parse()

	switch {
	case *saltLen > 0:
		salt, err := generateSalt(*saltLen)
		if err != nil {
			fmt.Println("failed to read random bytes:", err)
			os.Exit(1)
		}
		fmt.Printf("Token salt (%d bytes): %s\n", *saltLen, base64.StdEncoding.EncodeToString(salt))

	case *uid != 0:
		expires := time.Now().Add(*lifetime)
		fmt.Printf("Token v%d for user %d, expires %s:\n%s\n", tokenVersion, *uid,
			expires.UTC().Format(time.RFC3339), mintToken(mustDecodeSalt(*salt64), *uid, expires))

	case *token != "":
		uid, expires, err := parseToken(mustDecodeSalt(*salt64), *token)
		if err != nil {
			fmt.Println("INVALID:", err)
			os.Exit(1)
		}
		state := "valid"
		if time.Now().After(expires) {
			state = "EXPIRED"
		}
		fmt.Printf("Token %s: user %d, expires %s\n", state, uid, expires.UTC().Format(time.RFC3339))

	default:
		flag.Usage()
	}
}

func mustDecodeSalt(salt64 string) []byte {
	if salt64 == "" {
		fmt.Println("-hmac_salt is required")
		os.Exit(1)
	}
	salt, err := base64.StdEncoding.DecodeString(salt64)
	if err != nil {
		fmt.Println("failed to decode salt:", err)
		os.Exit(1)
	}
	return salt
}

func generateSalt(length int) ([]byte, error) {
	salt := make([]byte, length)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// mintToken signs a session token for the user, in the exact format the
// server accepts.
func mintToken(salt []byte, uid uint64, expires time.Time) string {
	buf := make([]byte, tokenLength)
	buf[0] = tokenVersion
	binary.LittleEndian.PutUint64(buf[1:], uid)
	binary.LittleEndian.PutUint32(buf[1+8:], uint32(expires.Unix()))

	hasher := hmac.New(md5.New, salt)
	hasher.Write(buf[:tokenSignedPart])
	copy(buf[tokenSignedPart:], hasher.Sum(nil))

	return base64.URLEncoding.EncodeToString(buf)
}

// parseToken verifies the token signature and unpacks the user id and
// expiration time. Expired tokens parse fine: expiration is the caller's
// call to judge.
func parseToken(salt []byte, token string) (uint64, time.Time, error) {
	if declen := base64.URLEncoding.DecodedLen(len(token)); declen < tokenLength ||
		declen > tokenLength+2 {
		return 0, time.Time{}, errors.New("wrong token length")
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(data) != tokenLength {
		return 0, time.Time{}, errors.New("failed to decode base64 token")
	}
	if data[0] != tokenVersion {
		return 0, time.Time{}, fmt.Errorf("unknown signature algorithm %d", data[0])
	}

	hasher := hmac.New(md5.New, salt)
	hasher.Write(data[:tokenSignedPart])
	if !hmac.Equal(data[tokenSignedPart:], hasher.Sum(nil)) {
		return 0, time.Time{}, errors.New("signature mismatch")
	}

	uid := binary.LittleEndian.Uint64(data[1 : 1+8])
	expires := time.Unix(int64(binary.LittleEndian.Uint32(data[1+8:tokenSignedPart])), 0)
	return uid, expires, nil
}
