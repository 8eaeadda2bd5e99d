package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"192.168.1.47":            "192.168.1.0",
		"127.0.0.1":               "127.0.0.0",
		"::ffff:10.1.2.3":         "10.1.2.0",
		"2001:db8:85a3::8a2e:370": "2001:db8:85a3::",
		"":                        "unknown",
		"unknown":                 "unknown",
		"not-an-ip":               "invalid",
	}
	for in, want := range cases {
		assert.Equal(t, want, AnonymizeIP(in), in)
	}
}

func TestMaskIdentifier(t *testing.T) {
	assert.Equal(t, "******456", MaskIdentifier(" ET-123456 "))
	assert.Equal(t, "***", MaskIdentifier("abc"))
	assert.Equal(t, "", MaskIdentifier(""))
	assert.Equal(t, "*ሰላም", MaskIdentifier("ኢሰላም"))
}
