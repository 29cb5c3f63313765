package strictxml_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/lestrrat-go/strictxml"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		events, err := strictxml.Parse(context.Background(), []byte(`<a><b/>text</a>`))
		require.NoError(t, err, "Parse should succeed")
		require.Len(t, events, 6)
		require.Equal(t, strictxml.EndOfDocumentEvent, events[5].Type())
	})

	t.Run("failure", func(t *testing.T) {
		_, err := strictxml.Parse(context.Background(), []byte(`<a>&bogus;</a>`))
		require.ErrorIs(t, err, strictxml.ErrUndeclaredEntity)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := strictxml.Parse(ctx, []byte(`<a/>`))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("pooled parsers are isolated", func(t *testing.T) {
		// an error in one Parse must not leak into the next
		_, err := strictxml.Parse(context.Background(), []byte(`<a><!-- -->`))
		require.Error(t, err, "first parse should fail")

		events, err := strictxml.Parse(context.Background(), []byte(`<b/>`))
		require.NoError(t, err, "second parse should be unaffected")
		require.Len(t, events, 3)
	})
}

func TestParseTraceLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := strictxml.WithTraceLogger(context.Background(), logger)
	_, err := strictxml.Parse(ctx, []byte(`<a>x</a>`))
	require.NoError(t, err, "Parse should succeed")

	out := buf.String()
	require.Contains(t, out, "StartElement")
	require.Contains(t, out, "Text")
	require.Contains(t, out, "EndOfDocument")
	require.Contains(t, out, `"op":"Parse"`)

	t.Run("latest logger wins", func(t *testing.T) {
		var first, second bytes.Buffer
		ctx := strictxml.WithTraceLogger(context.Background(),
			slog.New(slog.NewJSONHandler(&first, &slog.HandlerOptions{Level: slog.LevelDebug})))
		ctx = strictxml.WithTraceLogger(ctx,
			slog.New(slog.NewJSONHandler(&second, &slog.HandlerOptions{Level: slog.LevelDebug})))

		_, err := strictxml.Parse(ctx, []byte(`<a/>`))
		require.NoError(t, err, "Parse should succeed")
		require.Zero(t, first.Len(), "replaced logger receives nothing")
		require.Contains(t, second.String(), "StartElement")
	})
}

func TestVersion(t *testing.T) {
	require.NotEmpty(t, strictxml.Version)
}
