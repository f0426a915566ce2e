package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateEscapes(t *testing.T) {
	m, err := New("a@b.c").WithSubject("Reset").
		Template(`<a href="{{.Link}}">{{.Name}}</a>`, map[string]string{"Link": "http://x/reset/abc", "Name": "<Ana>"})
	require.NoError(t, err)
	assert.True(t, m.HTML)
	assert.Equal(t, `<a href="http://x/reset/abc">&lt;Ana&gt;</a>`, m.Body)
}

func TestTemplateParseError(t *testing.T) {
	_, err := New("a@b.c").Template(`{{.Broken`, nil)
	assert.Error(t, err)
}

func TestRawHeaders(t *testing.T) {
	raw := string(New("a@b.c", "d@e.f").WithSubject("Hi").Text("body").raw("Shop <s@shop>"))
	assert.Contains(t, raw, "From: Shop <s@shop>\r\n")
	assert.Contains(t, raw, "To: a@b.c, d@e.f\r\n")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\nbody")
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), New("a@b.c")))
	assert.ErrorIs(t, LogSender{}.Send(context.Background(), New()), ErrNoRecipients)
}

type nopSender struct{ sent int }

func (n *nopSender) Send(context.Context, *Message) error { n.sent++; return nil }

func TestUseOverridesDefault(t *testing.T) {
	s := &nopSender{}
	Use(s)
	t.Cleanup(func() { Use(nil) })

	require.NoError(t, Default().Send(context.Background(), New("a@b.c")))
	assert.Equal(t, 1, s.sent)
}
