package metadata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/bookmarks/internal/metadata"
)

func serveHTML(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_Load_TitleAndDescription(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, `<!doctype html><html><head>
		<title>  Example
		Domain </title>
		<meta name="description" content="An example &amp; a test">
		</head><body>hi</body></html>`)

	got, err := metadata.NewLoader(2*time.Second, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Example Domain", got.Title)
	assert.Equal(t, "An example & a test", got.Description)
}

func TestLoader_Load_OpenGraphFallback(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, `<html><head>
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG Description">
		</head></html>`)

	got, err := metadata.NewLoader(2*time.Second, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "OG Title", got.Title)
	assert.Equal(t, "OG Description", got.Description)
}

func TestLoader_Load_StripsMarkup(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, `<html><head>
		<meta name="description" content="<b>bold</b> <script>alert(1)</script>text">
		</head></html>`)

	got, err := metadata.NewLoader(2*time.Second, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.NotContains(t, got.Description, "<")
	assert.Contains(t, got.Description, "bold")
	assert.Contains(t, got.Description, "text")
}

func TestLoader_Load_TruncatesLongTitle(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, "<html><head><title>"+strings.Repeat("x", 600)+"</title></head></html>")

	got, err := metadata.NewLoader(2*time.Second, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, got.Title, 512)
}

func TestLoader_Load_Non2xxIsError(t *testing.T) {
	srv := serveHTML(t, http.StatusNotFound, "<html><head><title>Not Found</title></head></html>")

	_, err := metadata.NewLoader(2*time.Second, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	assert.ErrorContains(t, err, "unexpected status 404")
}

func TestLoader_Load_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	_, err := metadata.NewLoader(50*time.Millisecond, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	assert.Error(t, err)
}

func TestLoader_Load_DecodesLatin1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><head><title>Caf\xe9 M\xfcnchen</title>" +
			"<meta name=\"description\" content=\"Gr\xfc\xdfe\"></head></html>"))
	}))
	t.Cleanup(srv.Close)

	got, err := metadata.NewLoader(2*time.Second, metadata.WithPrivateNetworks()).Load(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Café München", got.Title)
	assert.Equal(t, "Grüße", got.Description)
}

func TestParse_MetaCharset(t *testing.T) {
	got, err := metadata.Parse(strings.NewReader("<meta charset=iso-8859-1><title>Caf\xe9 M\xfcnchen</title>"))

	require.NoError(t, err)
	assert.Equal(t, "Café München", got.Title)
	assert.True(t, utf8.ValidString(got.Title))
}

func TestParse_UndeclaredNonUTF8IsStillValidUTF8(t *testing.T) {
	got, err := metadata.Parse(strings.NewReader("<html><head><title>na\xefve \x93quotes\x94</title></head></html>"))

	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got.Title))
	assert.Equal(t, "naïve \u201cquotes\u201d", got.Title)
}

func TestLoader_Load_RefusesLoopbackByDefault(t *testing.T) {
	srv := serveHTML(t, http.StatusOK, "<html><head><title>internal</title></head></html>")

	_, err := metadata.NewLoader(2*time.Second).Load(context.Background(), srv.URL)

	assert.ErrorIs(t, err, metadata.ErrForbiddenAddress)
}

func TestNop_Load(t *testing.T) {
	got, err := metadata.Nop{}.Load(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Empty(t, got.Description)
}
