/******************************************************************************
 *
 *  Description :
 *
 *  Session tokens. A token carries an authenticated user id with an
 *  expiration time, signed with the server's secret.
 *
 *****************************************************************************/

package main

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"time"

	"github.com/isomorphiccat/kemotown/server/logs"
	t "github.com/isomorphiccat/kemotown/server/store/types"
)

// Signed token. Composition:
//   [1:algorithm version][8:user id][4:expiration unix time][16:signature] = 29 bytes
// convertible to base64 without padding. All integers are little-endian.

const (
	tokenVersion   = 1
	tokenLenUid    = 8
	tokenLenExpire = 4
	tokenLenSig    = 16
	tokenLength    = 1 + tokenLenUid + tokenLenExpire + tokenLenSig

	tokenSignedPart = 1 + tokenLenUid + tokenLenExpire
)

// makeSessionToken issues a signed token for the user.
func makeSessionToken(uid t.Uid, expiresIn time.Duration) string {
	buf := make([]byte, tokenLength)
	buf[0] = tokenVersion
	binary.LittleEndian.PutUint64(buf[1:], uint64(uid))
	binary.LittleEndian.PutUint32(buf[1+tokenLenUid:],
		uint32(time.Now().Add(expiresIn).Unix()))

	hasher := hmac.New(md5.New, globals.tokenSalt)
	hasher.Write(buf[:tokenSignedPart])
	copy(buf[tokenSignedPart:], hasher.Sum(nil))

	return base64.URLEncoding.EncodeToString(buf)
}

// checkSessionToken validates a token's signature and expiration. Returns
// the authenticated user id.
func checkSessionToken(token string) (uid t.Uid, isValid bool) {
	if declen := base64.URLEncoding.DecodedLen(len(token)); declen < tokenLength ||
		declen > tokenLength+2 {
		return
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil || len(data) != tokenLength {
		logs.Warning.Println("failed to decode base64 token")
		return
	}
	if data[0] != tokenVersion {
		logs.Warning.Println("unknown token signature algorithm", data[0])
		return
	}

	hasher := hmac.New(md5.New, globals.tokenSalt)
	hasher.Write(data[:tokenSignedPart])
	if !hmac.Equal(data[tokenSignedPart:], hasher.Sum(nil)) {
		logs.Warning.Println("invalid token signature")
		return
	}

	expires := time.Unix(int64(binary.LittleEndian.Uint32(data[1+tokenLenUid:tokenSignedPart])), 0)
	if time.Now().After(expires) {
		return
	}

	uid = t.Uid(binary.LittleEndian.Uint64(data[1 : 1+tokenLenUid]))
	isValid = !uid.IsZero()
	return
}

// getSessionToken extracts the token from a request: the Authorization
// bearer header first, the "token" form value as a fallback for websocket
// clients which cannot set headers.
func getSessionToken(req *http.Request) string {
	if auth := req.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return req.FormValue("token")
}
