package media

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadSignature(t *testing.T) {
	assert := assert.New(t)

	sum := sha1.Sum([]byte("public_id=b0c63ac7-dc46-409c-b086-9dc0932da963&timestamp=1643673600sekret"))
	expected := hex.EncodeToString(sum[:])

	signature := uploadSignature("b0c63ac7-dc46-409c-b086-9dc0932da963", "1643673600", "sekret")
	assert.Equal(expected, signature)
	assert.Len(signature, 40)

	// secret participates in the signature
	assert.NotEqual(signature, uploadSignature("b0c63ac7-dc46-409c-b086-9dc0932da963", "1643673600", "other"))
}

func TestUploadError(t *testing.T) {
	assert := assert.New(t)

	err := uploadError(401, []byte(`{"error":{"message":"Invalid Signature"}}`))
	assert.EqualError(err, "upload rejected (401): Invalid Signature")

	err = uploadError(502, []byte(`<html>bad gateway</html>`))
	assert.Contains(err.Error(), "invalid status code 502")
}
