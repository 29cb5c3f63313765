package strictxml_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lestrrat-go/strictxml"
	"github.com/stretchr/testify/require"
)

func TestDumpRoundTrip(t *testing.T) {
	inputs := []string{
		`<a/>`,
		`<a xmlns:p="urn:x"><p:b p:v="1 &amp; 2">text &lt;here&gt;</p:b></a>`,
		`<?xml version="1.0" encoding="utf-8"?><r xmlns="urn:d"><c>x</c></r>`,
		`<a v="it&#39;s &quot;quoted&quot;"/>`,
		`<a xmlns="urn:d"><b xmlns=""/></a>`, // undeclared default must survive
	}

	var d strictxml.Dumper
	for _, input := range inputs {
		events, err := parseAll(input)
		require.NoError(t, err, "original should parse: %s", input)

		var buf bytes.Buffer
		require.NoError(t, d.DumpEvents(&buf, events), "dump should succeed")

		again, err := parseAll(buf.String())
		require.NoError(t, err, "dumped form should parse: %s", buf.String())
		if diff := cmp.Diff(events, again); diff != "" {
			t.Errorf("round trip diverged for %s (-want +got):\n%s", input, diff)
		}
	}
}

func TestDumpEscaping(t *testing.T) {
	events, err := parseAll(`<a>1 &lt; 2 &amp;&amp; 3 &gt; 2</a>`)
	require.NoError(t, err, "parse should succeed")

	var buf bytes.Buffer
	var d strictxml.Dumper
	require.NoError(t, d.DumpEvents(&buf, events))
	require.Equal(t, `<a xmlns="">1 &lt; 2 &amp;&amp; 3 &gt; 2</a>`, buf.String())
}
