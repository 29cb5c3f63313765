package encoding_test

import (
	"testing"

	"github.com/lestrrat-go/strictxml/encoding"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF-8", "Utf-8", "utf8"} {
		require.Equal(t, encoding.UTF8, encoding.Load(name), "%q should resolve to UTF-8", name)
	}

	for _, name := range []string{"iso-8859-1", "Shift_JIS", "euc-jp", "utf-16"} {
		enc := encoding.Load(name)
		require.NotNil(t, enc, "%q should be recognized", name)
		require.NotEqual(t, encoding.UTF8, enc, "%q is not UTF-8", name)
	}

	require.Nil(t, encoding.Load("klingon"), "unknown names resolve to nil")
	require.Nil(t, encoding.Load(""), "empty name resolves to nil")
}
