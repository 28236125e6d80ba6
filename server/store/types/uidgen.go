package types

import (
	"encoding/base64"
	"encoding/binary"

	sf "github.com/tinode/snowflake"
	"golang.org/x/crypto/xtea"
)

// UidGenerator holds snowflake and encryption parameters.
// Ids are snowflake-generated int64s, XTEA-encrypted so they look random
// and do not leak creation order to clients.
type UidGenerator struct {
	seq    *sf.SnowFlake
	cipher *xtea.Cipher
}

// Init initializes the Uid generator.
func (ug *UidGenerator) Init(workerID uint, key []byte) error {
	var err error

	if ug.seq == nil {
		ug.seq, err = sf.NewSnowFlake(uint32(workerID))
	}
	if ug.cipher == nil {
		ug.cipher, err = xtea.NewCipher(key)
	}

	return err
}

// Get generates a unique weakly encrypted id.
func (ug *UidGenerator) Get() Uid {
	buf, err := getIDBuffer(ug)
	if err != nil {
		return ZeroUid
	}
	return Uid(binary.LittleEndian.Uint64(buf))
}

// GetStr generates a unique id then returns it as a base64 string.
func (ug *UidGenerator) GetStr() string {
	buf, err := getIDBuffer(ug)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(buf)[:uidBase64Unpadded]
}

// DecodeUid decrypts an XTEA-encrypted Uid into the original int64.
// Needed for SQL compatibility: the raw snowflake values are stored as
// ordinary signed integers.
func (ug *UidGenerator) DecodeUid(uid Uid) int64 {
	var src, dst [8]byte
	binary.LittleEndian.PutUint64(src[:], uint64(uid))
	ug.cipher.Decrypt(dst[:], src[:])
	return int64(binary.LittleEndian.Uint64(dst[:]))
}

// EncodeInt64 is the inverse of DecodeUid.
func (ug *UidGenerator) EncodeInt64(val int64) Uid {
	var src, dst [8]byte
	binary.LittleEndian.PutUint64(src[:], uint64(val))
	ug.cipher.Encrypt(dst[:], src[:])
	return Uid(binary.LittleEndian.Uint64(dst[:]))
}

// getIDBuffer returns a byte array holding the Uid bytes.
func getIDBuffer(ug *UidGenerator) ([]byte, error) {
	var id uint64
	var err error
	if id, err = ug.seq.Next(); err != nil {
		return nil, err
	}

	var src = make([]byte, 8)
	var dst = make([]byte, 8)
	binary.LittleEndian.PutUint64(src, id)
	ug.cipher.Encrypt(dst, src)

	return dst, nil
}
